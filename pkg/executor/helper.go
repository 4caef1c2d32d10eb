package executor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/timbertson/daglink/pkg/logging"
)

// DefaultHelper is used when nothing else is configured or found
const DefaultHelper = "sudo"

// LookPathFunc finds an executable on PATH
type LookPathFunc func(file string) (string, error)

// FindHelper picks the escalation helper: the configured command if set,
// else the first entry of preference found by lookPath, else DefaultHelper.
func FindHelper(command string, preference []string, lookPath LookPathFunc) []string {
	logger := logging.GetLogger("executor")

	if fields := strings.Fields(command); len(fields) > 0 {
		logger.Debug().Strs("helper", fields).Msg("Using configured escalation helper")
		return fields
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, candidate := range preference {
		if candidate == "" {
			continue
		}
		if _, err := lookPath(candidate); err == nil {
			logger.Debug().Str("helper", candidate).Msg("Found escalation helper")
			return []string{candidate}
		}
	}
	logger.Debug().Str("helper", DefaultHelper).Msg("No preferred escalation helper found, using default")
	return []string{DefaultHelper}
}

// CommandEscalator runs argv under an external helper such as sudo. The
// helper inherits the terminal so it can ask for a password.
type CommandEscalator struct {
	Helper []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommandEscalator creates an escalator wired to the process terminal
func NewCommandEscalator(helper []string) *CommandEscalator {
	return &CommandEscalator{
		Helper: helper,
		Stdin:  os.Stdin,
		Stdout: os.Stderr,
		Stderr: os.Stderr,
	}
}

// Escalate implements Escalator
func (c *CommandEscalator) Escalate(ctx context.Context, argv []string) error {
	full := append(append([]string(nil), c.Helper...), argv...)
	logging.LogCommand(full[0], full[1:])

	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}
