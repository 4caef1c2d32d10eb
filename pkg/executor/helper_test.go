package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookPathIn(available ...string) LookPathFunc {
	return func(file string) (string, error) {
		for _, a := range available {
			if a == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", fmt.Errorf("%s: %w", file, exec.ErrNotFound)
	}
}

func TestFindHelper(t *testing.T) {
	prefs := []string{"sudo", "doas", "run0"}

	assert.Equal(t, []string{"doas", "-u", "root"}, FindHelper("doas -u root", prefs, lookPathIn()))
	assert.Equal(t, []string{"sudo"}, FindHelper("", prefs, lookPathIn("sudo", "doas")))
	assert.Equal(t, []string{"doas"}, FindHelper("", prefs, lookPathIn("doas", "run0")))
	assert.Equal(t, []string{"run0"}, FindHelper("  ", prefs, lookPathIn("run0")))
	assert.Equal(t, []string{DefaultHelper}, FindHelper("", prefs, lookPathIn()))
	assert.Equal(t, []string{DefaultHelper}, FindHelper("", nil, lookPathIn("doas")))
}

func TestCommandEscalator(t *testing.T) {
	if _, err := exec.LookPath("env"); err != nil {
		t.Skip("env not available")
	}
	var stdout bytes.Buffer
	esc := &CommandEscalator{Helper: []string{"env"}, Stdout: &stdout, Stderr: &stdout}

	require.NoError(t, esc.Escalate(context.Background(), []string{"echo", "hello"}))
	assert.Equal(t, "hello\n", stdout.String())

	assert.Error(t, esc.Escalate(context.Background(), []string{"false"}))
}
