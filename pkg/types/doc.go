// Package types defines the core types and interfaces used throughout jobtx.
// This includes the Job and Task model, the FS capability the runner
// consumes, and the RunResult record a run produces.
package types
