// Package config loads jobtx configuration.
//
// Values are layered, later sources winning: the embedded defaults, the
// project's .jobtx.toml, then JOBTX_* environment variables. An env var
// maps to a dotted key by its first underscore, so JOBTX_ROLLBACK_POLICY
// sets rollback.policy and JOBTX_EXECUTOR_MAX_PARALLEL sets
// executor.max_parallel.
package config
