package config

import (
	"time"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/executor"
	"github.com/arthur-debert/jobtx/pkg/ui"
)

// FileName is the per-project configuration file, read from the root.
const FileName = ".jobtx.toml"

// Config is the complete jobtx configuration
type Config struct {
	Project  Project  `koanf:"project"`
	Jobfile  Jobfile  `koanf:"jobfile"`
	Rollback Rollback `koanf:"rollback"`
	Executor Executor `koanf:"executor"`
	Shell    Shell    `koanf:"shell"`
	Output   Output   `koanf:"output"`
}

// Project controls root discovery
type Project struct {
	Markers []string `koanf:"markers"`
	RootEnv []string `koanf:"root_env"`
}

// Jobfile lists the file names searched for in the root, in order.
type Jobfile struct {
	Names []string `koanf:"names"`
}

// Rollback configures failure handling
type Rollback struct {
	Policy        string `koanf:"policy"`
	RestoreFailed bool   `koanf:"restore_failed"`
}

// Executor configures the runner
type Executor struct {
	MaxParallel int `koanf:"max_parallel"`
}

// Shell configures how jobfile commands are run
type Shell struct {
	Path    string        `koanf:"path"`
	Timeout time.Duration `koanf:"timeout"`
}

// Output configures result rendering
type Output struct {
	Format string `koanf:"format"`
}

// Validate checks values that cannot be expressed by the types alone.
func (c *Config) Validate() error {
	if _, err := executor.ParsePolicy(c.Rollback.Policy); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid rollback.policy").
			WithDetail("value", c.Rollback.Policy)
	}
	if _, err := ui.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid output.format").
			WithDetail("value", c.Output.Format)
	}
	if c.Executor.MaxParallel < 1 {
		return errors.Newf(errors.ErrConfigValid, "executor.max_parallel must be at least 1, got %d", c.Executor.MaxParallel)
	}
	if c.Shell.Timeout < 0 {
		return errors.Newf(errors.ErrConfigValid, "shell.timeout must not be negative, got %s", c.Shell.Timeout)
	}
	if len(c.Jobfile.Names) == 0 {
		return errors.New(errors.ErrConfigValid, "jobfile.names must not be empty")
	}
	return nil
}

// ExecutorOptions maps the configuration onto executor options. FS, Root
// and Logger are left for the caller.
func (c *Config) ExecutorOptions() (executor.Options, error) {
	policy, err := executor.ParsePolicy(c.Rollback.Policy)
	if err != nil {
		return executor.Options{}, err
	}
	return executor.Options{
		MaxParallel:   c.Executor.MaxParallel,
		Policy:        policy,
		RestoreFailed: c.Rollback.RestoreFailed,
	}, nil
}
