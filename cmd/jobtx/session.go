package jobtx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/jobtx/pkg/config"
	"github.com/arthur-debert/jobtx/pkg/filesystem"
	"github.com/arthur-debert/jobtx/pkg/jobfile"
	"github.com/arthur-debert/jobtx/pkg/project"
	"github.com/arthur-debert/jobtx/pkg/shell"
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/arthur-debert/jobtx/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalFlags holds the persistent flag values shared by every command.
type globalFlags struct {
	verbosity int
	dir       string
	jobfile   string
	format    string
}

// session is what a command works with once the project is resolved.
type session struct {
	fs       types.FS
	root     project.Root
	cfg      *config.Config
	renderer ui.Renderer
	flags    *globalFlags
}

// withSession resolves the project root, loads its configuration and
// calls fn. Discovery settings come from defaults and the environment,
// since the project config can only be read once the root is known.
func withSession(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, s *session) error) error {
	fsys := filesystem.NewOS()

	base, err := config.Load("")
	if err != nil {
		return err
	}

	start := flags.dir
	if start == "" {
		if start, err = os.Getwd(); err != nil {
			return fmt.Errorf(MsgErrWorkDir, err)
		}
	}

	opts := project.Options{Markers: base.Project.Markers, RootEnv: base.Project.RootEnv}
	_, err = project.Within(cmd.Context(), fsys, start, opts, func(ctx context.Context, root project.Root) (struct{}, error) {
		log.Debug().Str("root", root.Dir).Str("source", root.Source).Msg("Resolved project root")

		cfg, err := config.Load(root.Dir)
		if err != nil {
			return struct{}{}, err
		}

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format = flags.format
		}
		f, err := ui.ParseFormat(format)
		if err != nil {
			return struct{}{}, err
		}
		renderer, err := ui.NewRenderer(f, cmd.OutOrStdout())
		if err != nil {
			return struct{}{}, err
		}

		return struct{}{}, fn(ctx, &session{fs: fsys, root: root, cfg: cfg, renderer: renderer, flags: flags})
	})
	return err
}

// jobs loads the jobfile and builds its jobs. Command output is streamed
// to stderr when running verbosely.
func (s *session) jobs(cmd *cobra.Command) ([]types.Job, error) {
	path := s.flags.jobfile
	if path == "" {
		found, err := jobfile.Find(s.fs, s.root, s.cfg.Jobfile.Names)
		if err != nil {
			return nil, err
		}
		path = found
	} else if !filepath.IsAbs(path) {
		// A relative -f follows -C, like make -C.
		if s.flags.dir != "" {
			path = filepath.Join(s.flags.dir, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = abs
	}

	f, err := jobfile.Load(s.fs, path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("jobfile", path).Int("jobs", len(f.Jobs)).Msg("Loaded jobfile")

	shellOpts := shell.Options{
		Shell:   s.cfg.Shell.Path,
		Dir:     s.root.Dir,
		Timeout: s.cfg.Shell.Timeout,
		Env:     map[string]string{"JOBTX_ROOT": s.root.Dir},
	}
	if s.flags.verbosity > 0 {
		shellOpts.Stdout = cmd.ErrOrStderr()
		shellOpts.Stderr = cmd.ErrOrStderr()
	}

	return jobfile.Build(f, jobfile.Env{
		FS:    s.fs,
		Shell: shell.NewRunner(shellOpts),
		Root:  s.root,
	})
}
