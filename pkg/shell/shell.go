// Package shell runs shell commands on behalf of job actions and
// conditions. The executor never calls it directly.
package shell

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultShell is used when Options.Shell is empty.
const DefaultShell = "/bin/sh"

const waitDelay = 500 * time.Millisecond

// Options contains configuration for a Runner
type Options struct {
	// Shell is the interpreter invoked as `<shell> -c <command>`.
	Shell string
	// Dir is the working directory of every command.
	Dir string
	// Env is appended to the current process environment.
	Env map[string]string
	// Timeout bounds a single command. Zero means no timeout.
	Timeout time.Duration
	// Stdout and Stderr receive live output in addition to the capture.
	Stdout io.Writer
	Stderr io.Writer
	Logger *zerolog.Logger
}

// Result is the captured outcome of a command.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes shell commands
type Runner struct {
	opts   Options
	logger zerolog.Logger
}

// NewRunner creates a new Runner
func NewRunner(opts Options) *Runner {
	if opts.Shell == "" {
		opts.Shell = DefaultShell
	}
	logger := logging.GetLogger("shell")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Runner{opts: opts, logger: logger}
}

// Run executes command and returns its captured output. A non-zero exit
// status is returned as COMMAND_FAILED with the result still populated.
func (r *Runner) Run(ctx context.Context, command string) (Result, error) {
	if command == "" {
		return Result{}, errors.New(errors.ErrInvalidInput, "shell command is empty")
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	args := []string{"-c", command}
	logging.LogCommand(r.logger, r.opts.Shell, args)

	cmd := exec.CommandContext(ctx, r.opts.Shell, args...)
	// Grandchildren may hold the output pipes open after a kill.
	cmd.WaitDelay = waitDelay
	if r.opts.Dir != "" {
		if _, err := os.Stat(r.opts.Dir); err != nil {
			return Result{Command: command}, errors.Wrapf(err, errors.ErrFileAccess,
				"working directory does not exist: %s", r.opts.Dir)
		}
		cmd.Dir = r.opts.Dir
	}

	cmd.Env = os.Environ()
	for key, value := range r.opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, r.opts.Stdout)
	cmd.Stderr = tee(&stderr, r.opts.Stderr)

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if stdout.Len() > 0 {
		r.logger.Trace().Str("output", res.Stdout).Msg("Command stdout")
	}
	if stderr.Len() > 0 {
		r.logger.Trace().Str("output", res.Stderr).Msg("Command stderr")
	}

	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		return res, errors.Wrapf(ctxErr, errors.ErrCommandFailed, "command interrupted: %s", command).
			WithDetail("command", command)
	}
	if err != nil {
		return res, errors.Wrapf(err, errors.ErrCommandFailed, "command failed: %s", command).
			WithDetail("command", command).
			WithDetail("exitCode", res.ExitCode).
			WithDetail("stderr", res.Stderr)
	}

	r.logger.Debug().
		Str("command", command).
		Dur("duration", res.Duration).
		Msg("Command completed")
	return res, nil
}

// Check runs command as a predicate: exit status 0 is true, any other exit
// status is false. Failing to start the command at all is an error.
func (r *Runner) Check(ctx context.Context, command string) (bool, error) {
	_, err := r.Run(ctx, command)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
