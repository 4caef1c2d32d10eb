package daglink

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/timbertson/daglink/pkg/config"
	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/executor"
	"github.com/timbertson/daglink/pkg/filesystem"
	"github.com/timbertson/daglink/pkg/linker"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/paths"
	"github.com/timbertson/daglink/pkg/provenance"
	"github.com/timbertson/daglink/pkg/resolver"
	"github.com/timbertson/daglink/pkg/selector"
	"github.com/timbertson/daglink/pkg/types"
	"github.com/timbertson/daglink/pkg/ui"
	"github.com/timbertson/daglink/pkg/ui/confirmations"
)

// globalOptions holds the persistent flags
type globalOptions struct {
	config      string
	base        string
	match       string
	format      string
	force       bool
	interactive bool
	dryRun      bool
	quiet       bool
	verbosity   int
}

// app is what every command shares once flags and settings are loaded
type app struct {
	opts     globalOptions
	paths    types.Pather
	settings *config.Settings

	// hostname is looked up lazily; tests set it directly
	hostname func() (string, error)
	// confirmer answers --interactive prompts
	confirmer executor.Confirmer
	// escalator runs commands as root; nil means find a helper on PATH
	escalator executor.Escalator
}

func newApp() *app {
	return &app{hostname: os.Hostname}
}

// setup runs before every command
func (a *app) setup(cmd *cobra.Command) error {
	verbosity := a.opts.verbosity
	if a.opts.quiet {
		verbosity = -1
	}

	p, err := paths.New()
	if err != nil {
		return err
	}
	a.paths = p

	settings, err := config.LoadSettings(p.SettingsFile())
	if err != nil {
		logging.SetupLogger(verbosity)
		return err
	}
	a.settings = settings

	logging.SetupLoggerWithRotation(verbosity, logging.Rotation{
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAgeDays,
	})
	logging.LogCommand(cmd.Name(), os.Args[1:])
	log.Debug().Str("command", cmd.Name()).Msg("Command started")
	return nil
}

// configFile picks --config, then the settings file, then the default
func (a *app) configFile() (string, error) {
	file := a.opts.config
	if file == "" && a.settings != nil {
		file = a.settings.Config.File
	}
	if file == "" {
		file = a.paths.ConfigFile()
	}
	return paths.Absolutize(file, "")
}

func (a *app) matchPolicy() (selector.MatchPolicy, error) {
	match := a.opts.match
	if match == "" && a.settings != nil {
		match = a.settings.Tags.Match
	}
	return selector.ParseMatchPolicy(match)
}

func (a *app) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(a.opts.format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

// session is one run against the link config: the config, the provenance
// store and the engine operating on them. Close must be called on every
// path out of a command so the store gets flushed.
type session struct {
	cfg    *types.Config
	store  *provenance.Store
	engine *linker.Engine
	policy selector.MatchPolicy
}

func (a *app) open(cmd *cobra.Command) (*session, error) {
	fsys := filesystem.NewOS()

	file, err := a.configFile()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFile(fsys, file)
	if err != nil {
		return nil, err
	}

	policy, err := a.matchPolicy()
	if err != nil {
		return nil, err
	}

	base, err := a.baseDir(cfg)
	if err != nil {
		return nil, err
	}

	store, err := provenance.Load(fsys, a.paths.ProvenanceFile())
	if err != nil {
		return nil, err
	}

	exec := executor.New(fsys, a.rootEscalator(), a.rootConfirmer(), executor.Policy{
		DryRun:      a.opts.dryRun,
		Force:       a.opts.force,
		Interactive: a.opts.interactive,
	}, cmd.OutOrStdout())

	l := linker.New(fsys, exec, store, resolver.NewZeroInstall(fsys), base)
	marker := linker.NewMarker(fsys, a.paths.MarkerFile())

	log.Debug().
		Str("config", file).
		Str("base", base).
		Str("match", policy.String()).
		Msg("Session opened")

	return &session{
		cfg:    cfg,
		store:  store,
		engine: linker.NewEngine(l, marker),
		policy: policy,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// baseDir picks --base, then meta basedir relative to the config file, then
// the working directory.
func (a *app) baseDir(cfg *types.Config) (string, error) {
	if a.opts.base != "" {
		return paths.Absolutize(a.opts.base, "")
	}
	if cfg.Meta.BaseDir != "" {
		return paths.Absolutize(cfg.Meta.BaseDir, filepath.Dir(cfg.File))
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to get working directory")
	}
	return cwd, nil
}

func (a *app) rootEscalator() executor.Escalator {
	if a.escalator != nil {
		return a.escalator
	}
	var command string
	var preference []string
	if a.settings != nil {
		command = a.settings.Escalation.Command
		preference = a.settings.Escalation.Preference
	}
	helper := executor.FindHelper(command, preference, nil)
	if len(helper) == 0 {
		log.Debug().Msg("No privilege escalation helper found")
		return nil
	}
	return executor.NewCommandEscalator(helper)
}

func (a *app) rootConfirmer() executor.Confirmer {
	if a.confirmer != nil {
		return a.confirmer
	}
	return confirmations.NewConsole()
}

// activeTags uses the tags given as arguments, or those enabled for this
// host by meta.hosts.
func (a *app) activeTags(cfg *types.Config, args []string) types.TagSet {
	if len(args) > 0 {
		return types.NewTagSet(args...)
	}
	host, err := a.hostname()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get hostname, using no tags")
		return types.NewTagSet()
	}
	return selector.HostTags(cfg.Meta, host)
}

func (s *session) options(tags types.TagSet) linker.Options {
	return linker.Options{Tags: tags, Policy: s.policy}
}

// withSession opens a session, runs fn and closes the session, keeping the
// first error.
func (a *app) withSession(ctx context.Context, cmd *cobra.Command, fn func(s *session) error) (err error) {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}
