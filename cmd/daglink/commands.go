package daglink

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/timbertson/daglink/internal/version"
	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/linker"
	"github.com/timbertson/daglink/pkg/watch"
)

func newApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "apply [tags...]",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
		GroupID: "core",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), cmd, func(s *session) error {
				return a.apply(cmd.Context(), cmd, s, args)
			})
		},
	}
}

func (a *app) apply(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
	r, err := a.renderer(cmd)
	if err != nil {
		return err
	}
	tags := a.activeTags(s.cfg, args)
	log.Info().Str("tags", tags.String()).Msg("Applying")

	result, err := s.engine.Process(ctx, s.cfg, s.options(tags))
	if err != nil {
		return err
	}
	if err := r.RenderResult("apply", result); err != nil {
		return err
	}
	if a.opts.dryRun {
		log.Info().Msg(MsgDryRunNotice)
	}
	return problems(result)
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Short:   MsgCleanShort,
		Long:    MsgCleanLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), cmd, func(s *session) error {
				result, err := s.engine.Clean(cmd.Context(), s.cfg)
				if err != nil {
					return err
				}
				if err := r.RenderResult("clean", result); err != nil {
					return err
				}
				return problems(result)
			})
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status [tags...]",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		GroupID: "core",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), cmd, func(s *session) error {
				status, err := s.engine.Status(cmd.Context(), s.cfg, s.options(a.activeTags(s.cfg, args)))
				if err != nil {
					return err
				}
				return r.RenderStatus(status)
			})
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "report [tags...]",
		Short:   MsgReportShort,
		GroupID: "core",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), cmd, func(s *session) error {
				result, err := s.engine.Report(cmd.Context(), s.cfg, s.options(a.activeTags(s.cfg, args)))
				if err != nil {
					return err
				}
				if n := len(result.Skips); n > 0 {
					log.Warn().Int("missing", n).Msg("Some paths could not be listed")
				}
				return nil
			})
		},
	}
}

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "tags",
		Short:   MsgTagsShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), cmd, func(s *session) error {
				return r.RenderList(s.engine.ListTags(s.cfg))
			})
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "watch [tags...]",
		Short:   MsgWatchShort,
		GroupID: "core",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.configFile()
			if err != nil {
				return err
			}
			// Each run loads the config and provenance afresh, so edits to
			// either between runs are picked up.
			return watch.New(file, 0).Run(cmd.Context(), func(ctx context.Context) error {
				return a.withSession(ctx, cmd, func(s *session) error {
					return a.apply(ctx, cmd, s, args)
				})
			})
		},
	}
}

// problems turns skipped or failed paths into an error so the exit status
// is nonzero.
func problems(result *linker.Result) error {
	if n := result.Problems(); n > 0 {
		return errors.Newf(errors.ErrSkipped, MsgErrProblems, n)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "daglink", version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(daglink completion bash)

Zsh:
  $ daglink completion zsh > "${fpath[1]}/_daglink"

Fish:
  $ daglink completion fish > ~/.config/fish/completions/daglink.fish

PowerShell:
  PS> daglink completion powershell | Out-String | Invoke-Expression
`,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man [dir]",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
			}
			header := &doc.GenManHeader{
				Title:   "DAGLINK",
				Section: "1",
				Source:  "daglink " + version.Version,
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "failed to generate man pages")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Man pages written to %s\n", dir)
			return nil
		},
	}
}
