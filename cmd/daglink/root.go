package daglink

import (
	"embed"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/timbertson/daglink/internal/version"
	"github.com/timbertson/daglink/pkg/cobrax/topics"
)

//go:embed topics/*.md
var topicFiles embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	initTemplateFormatting()

	apply := newApplyCmd(a)

	rootCmd := &cobra.Command{
		Use:     "daglink [tags...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		Args:              cobra.ArbitraryArgs,
		RunE:              apply.RunE,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.opts.config, "config", "c", "", MsgFlagConfig)
	flags.BoolVarP(&a.opts.force, "force", "f", false, MsgFlagForce)
	flags.BoolVarP(&a.opts.interactive, "interactive", "i", false, MsgFlagInteractive)
	flags.BoolVarP(&a.opts.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	flags.StringVarP(&a.opts.base, "base", "b", "", MsgFlagBase)
	flags.StringVar(&a.opts.match, "match", "", MsgFlagMatch)
	flags.CountVarP(&a.opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVarP(&a.opts.quiet, "quiet", "q", false, MsgFlagQuiet)
	flags.StringVar(&a.opts.format, "format", "auto", MsgFlagFormat)
	rootCmd.MarkFlagsMutuallyExclusive("force", "interactive")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(apply)
	rootCmd.AddCommand(newCleanCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newReportCmd(a))
	rootCmd.AddCommand(newTagsCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newVersionCmd())

	installTopics(rootCmd)

	return rootCmd
}

func installTopics(rootCmd *cobra.Command) {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	m, err := topics.Load(sub, ".", topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	m.Install(rootCmd)
}
