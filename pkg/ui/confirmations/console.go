// Package confirmations asks the operator yes/no questions on the console.
package confirmations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/timbertson/daglink/pkg/logging"
)

// Console implements executor.Confirmer. On a terminal it shows an
// interactive pterm prompt; otherwise it reads an answer line from its
// input. An empty answer means yes.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewConsole creates a Console on the process's stdin and stderr
func NewConsole() *Console {
	return &Console{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: isTerminal(os.Stdin) && isTerminal(os.Stderr),
	}
}

// NewLineConsole creates a Console that always reads plain lines from in
func NewLineConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Confirm asks whether to go ahead with message
func (c *Console) Confirm(message string) bool {
	if c.interactive {
		ok, err := pterm.DefaultInteractiveConfirm.
			WithDefaultValue(true).
			WithDefaultText(message + "?").
			Show()
		if err == nil {
			return ok
		}
		logger := logging.GetLogger("confirmations")
		logger.Debug().Err(err).Msg("Interactive prompt failed; reading a line instead")
	}

	fmt.Fprintf(c.out, "%s? [Y/n] ", message)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		// no answer at all, as on a closed stdin
		fmt.Fprintln(c.out)
		return false
	}
	return Accepts(line)
}

// Accepts reports whether an answer means yes
func Accepts(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes", "ok":
		return true
	}
	return false
}
