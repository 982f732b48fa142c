package jobtx

import (
	"context"
	"fmt"

	"github.com/arthur-debert/jobtx/internal/version"
	"github.com/arthur-debert/jobtx/pkg/config"
	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/executor"
	"github.com/arthur-debert/jobtx/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "jobtx",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", MsgFlagDir)
	rootCmd.PersistentFlags().StringVarP(&flags.jobfile, "file", "f", "", MsgFlagJobfile)
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newPlanCmd(flags))
	rootCmd.AddCommand(newRootDirCmd(flags))
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		policy        string
		restoreFailed bool
	)

	cmd := &cobra.Command{
		Use:     "run",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		Example: MsgRunExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				jobs, err := s.jobs(cmd)
				if err != nil {
					return err
				}

				opts, err := s.cfg.ExecutorOptions()
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("policy") {
					if opts.Policy, err = executor.ParsePolicy(policy); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("restore-failed") {
					opts.RestoreFailed = restoreFailed
				}
				opts.FS = s.fs
				opts.Root = s.root.Dir

				log.Info().
					Str("root", s.root.Dir).
					Str("policy", string(opts.Policy)).
					Int("jobs", len(jobs)).
					Msg("Running jobs")

				result, err := executor.New(opts).Run(ctx, jobs)
				if errors.IsCleanExit(err) {
					return s.renderer.RenderMessage(MsgNothingToDo)
				}
				if len(result.Tasks) > 0 {
					if renderErr := s.renderer.RenderRun(result); renderErr != nil {
						log.Error().Err(renderErr).Msg("Failed to render result")
					}
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&policy, "policy", string(executor.RollbackAbort), MsgFlagPolicy)
	cmd.Flags().BoolVar(&restoreFailed, "restore-failed", false, MsgFlagRestoreFailed)
	return cmd
}

func newPlanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "plan",
		Short:   MsgPlanShort,
		Long:    MsgPlanLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				jobs, err := s.jobs(cmd)
				if err != nil {
					return err
				}
				opts, err := s.cfg.ExecutorOptions()
				if err != nil {
					return err
				}
				tasks, err := executor.New(opts).Plan(ctx, jobs)
				if err != nil {
					return err
				}
				return s.renderer.RenderPlan(tasks)
			})
		},
	}
}

func newRootDirCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "root",
		Short:   MsgRootDirShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(_ context.Context, s *session) error {
				log.Info().Str("source", s.root.Source).Msg("Project root")
				_, err := fmt.Fprintln(cmd.OutOrStdout(), s.root.Dir)
				return err
			})
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultContent())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "JOBTX",
				Section: "1",
				Source:  "jobtx " + version.Version,
				Manual:  "jobtx manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
