package daglink

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort       = "Keep symlinks in line with a declarative config"
	MsgApplyShort      = "Create, replace and remove links for the given tags"
	MsgCleanShort      = "Remove every link daglink created"
	MsgTagsShort       = "List every tag used in the config"
	MsgReportShort     = "List applicable paths, like ls -l"
	MsgStatusShort     = "Show how each path compares with the config"
	MsgWatchShort      = "Apply, then apply again whenever the config changes"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"
	MsgVersionShort    = "Print version information"

	MsgErrProblems  = "%d paths were skipped or failed"
	MsgDryRunNotice = "dry run: nothing was changed"

	MsgFlagConfig      = "config file (default $XDG_CONFIG_HOME/daglink/conf)"
	MsgFlagForce       = "remove existing files and create missing directories without asking"
	MsgFlagInteractive = "like --force, but ask first"
	MsgFlagDryRun      = "print the commands that would run instead of running them"
	MsgFlagBase        = "directory relative paths are resolved against"
	MsgFlagMatch       = "how directive tags must match: intersect or subset"
	MsgFlagVerbose     = "increase verbosity (-v DEBUG, -vv TRACE)"
	MsgFlagQuiet       = "only log errors"
	MsgFlagFormat      = "output format: auto, term, text or json"
)

var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/apply-example.txt
	msgApplyExampleRaw string
	MsgApplyExample    = strings.TrimRight(msgApplyExampleRaw, "\n")

	//go:embed msgs/clean-long.txt
	msgCleanLongRaw string
	MsgCleanLong    = strings.TrimSpace(msgCleanLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
