// Package filesystem provides filesystem implementations for jobtx.
//
// This package contains implementations of the types.FS interface:
// the OS filesystem used by the CLI and an afero-backed one used by
// tests and embedders that want to run jobs against a virtual tree.
package filesystem
