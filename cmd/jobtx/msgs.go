package jobtx

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Run ordered jobs as a transaction"
	MsgRunShort        = "Run the jobfile, rolling back on failure"
	MsgPlanShort       = "Show which jobs a run would include"
	MsgRootDirShort    = "Print the resolved project root"
	MsgGenConfigShort  = "Print the default configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	// Status messages
	MsgNothingToDo   = "Nothing to do."
	MsgVersionFormat = "jobtx version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrNoCommand = "no command specified"
	MsgErrWorkDir   = "cannot determine working directory: %w"

	// Flag descriptions
	MsgFlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagJobfile       = "Jobfile to run, relative to --dir when given (default: first of jobfile.names in the project root)"
	MsgFlagDir           = "Start project root discovery from this directory"
	MsgFlagFormat        = "Output format: auto, term, text or json"
	MsgFlagPolicy        = "What to do when a rollback step fails: abort or continue"
	MsgFlagRestoreFailed = "Also restore the files of the job that failed"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/plan-long.txt
	msgPlanLongRaw string
	MsgPlanLong    = strings.TrimSpace(msgPlanLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
