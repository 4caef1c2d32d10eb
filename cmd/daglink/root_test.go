package daglink

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbertson/daglink/pkg/errors"
)

type deniedEscalator struct {
	calls [][]string
}

func (d *deniedEscalator) Escalate(_ context.Context, argv []string) error {
	d.calls = append(d.calls, argv)
	return errors.New(errors.ErrPermission, "escalation disabled in tests")
}

type fixedConfirmer bool

func (c fixedConfirmer) Confirm(string) bool { return bool(c) }

type cli struct {
	t         *testing.T
	root      string
	home      string
	configDir string
	stateDir  string
	hostname  string
	escalator *deniedEscalator
	confirm   fixedConfirmer
}

func newCLI(t *testing.T) *cli {
	root := t.TempDir()
	c := &cli{
		t:         t,
		root:      root,
		home:      filepath.Join(root, "home"),
		configDir: filepath.Join(root, "config"),
		stateDir:  filepath.Join(root, "state"),
		hostname:  "testhost",
		escalator: &deniedEscalator{},
	}
	for _, dir := range []string{c.home, c.configDir, c.stateDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	t.Setenv("DAGLINK_CONFIG_DIR", c.configDir)
	t.Setenv("DAGLINK_STATE_DIR", c.stateDir)
	t.Setenv("XDG_STATE_HOME", c.stateDir)
	t.Setenv("HOME", c.home)
	t.Setenv("NO_COLOR", "1")
	return c
}

func (c *cli) writeConfig(content string) string {
	file := filepath.Join(c.configDir, "conf")
	require.NoError(c.t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func (c *cli) file(rel string) string {
	path := filepath.Join(c.root, rel)
	require.NoError(c.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(c.t, os.WriteFile(path, []byte(rel), 0644))
	return path
}

func (c *cli) run(args ...string) (string, error) {
	a := newApp()
	a.hostname = func() (string, error) { return c.hostname, nil }
	a.escalator = c.escalator
	a.confirmer = c.confirm

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--format", "text", "-q"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) provenance() []string {
	data, err := os.ReadFile(filepath.Join(c.configDir, "installed"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(c.t, err)
	return strings.Fields(string(data))
}

func readlink(t *testing.T, path string) string {
	target, err := os.Readlink(path)
	require.NoError(t, err)
	return target
}

func TestApply_CreatesLinksAndIsIdempotent(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/vimrc")
	c.writeConfig("~/.vimrc:\n  path: " + target + "\n")
	link := filepath.Join(c.home, ".vimrc")

	out, err := c.run("apply")
	require.NoError(t, err)
	assert.Contains(t, out, "created")
	assert.Equal(t, target, readlink(t, link))
	assert.Equal(t, []string{link}, c.provenance())

	out, err = c.run()
	require.NoError(t, err)
	assert.Contains(t, out, "1 unchanged")
	assert.Equal(t, target, readlink(t, link))

	_, err = os.Stat(filepath.Join(c.stateDir, "last-applied"))
	assert.NoError(t, err)
}

func TestApply_TagsFromArgumentsAndHost(t *testing.T) {
	c := newCLI(t)
	work := c.file("work/gitconfig")
	home := c.file("home/gitconfig")
	c.writeConfig(`
meta:
  hosts:
    "office-*": [work]
~/.gitconfig:
  - path: ` + work + `
    tags: work
  - path: ` + home + `
    tags: home
`)
	link := filepath.Join(c.home, ".gitconfig")

	_, err := c.run("home")
	require.NoError(t, err)
	assert.Equal(t, home, readlink(t, link))

	c.hostname = "office-12"
	_, err = c.run("apply")
	require.NoError(t, err)
	assert.Equal(t, work, readlink(t, link))

	c.hostname = "elsewhere"
	_, err = c.run("apply")
	require.NoError(t, err)
	_, err = os.Lstat(link)
	assert.True(t, os.IsNotExist(err), "link for an inactive tag is removed")
	assert.Empty(t, c.provenance())
}

func TestApply_DryRun(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/vimrc")
	c.writeConfig("~/.vimrc:\n  path: " + target + "\n")

	out, err := c.run("-n")
	require.NoError(t, err)
	assert.Contains(t, out, "ln -s "+target+" "+filepath.Join(c.home, ".vimrc"))

	_, err = os.Lstat(filepath.Join(c.home, ".vimrc"))
	assert.True(t, os.IsNotExist(err))
	assert.Nil(t, c.provenance())
	_, err = os.Stat(filepath.Join(c.stateDir, "last-applied"))
	assert.True(t, os.IsNotExist(err))
}

func TestApply_ConflictNeedsForce(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/bashrc")
	existing := filepath.Join(c.home, ".bashrc")
	require.NoError(t, os.WriteFile(existing, []byte("mine"), 0644))
	c.writeConfig("~/.bashrc:\n  path: " + target + "\n")

	_, err := c.run()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSkipped))
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
	_, err = os.Stat(filepath.Join(c.stateDir, "last-applied"))
	assert.True(t, os.IsNotExist(err), "marker is only written by runs without problems")

	c.confirm = true
	_, err = c.run("-i")
	require.NoError(t, err)
	assert.Equal(t, target, readlink(t, existing))
}

func TestApply_AmbiguousChangesNothing(t *testing.T) {
	c := newCLI(t)
	a := c.file("a")
	b := c.file("b")
	first := c.file("first")
	c.writeConfig(`
~/first:
  path: ` + first + `
~/x:
  - path: ` + a + `
  - path: ` + b + `
`)

	_, err := c.run()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	assert.Contains(t, err.Error(), "~/x")
	_, err = os.Lstat(filepath.Join(c.home, "first"))
	assert.True(t, os.IsNotExist(err))
}

func TestApply_FatalErrorStillSavesProvenance(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/a")
	c.writeConfig(`
~/a:
  path: ` + target + `
~/z:
  path: ` + filepath.Join(c.root, "dotfiles", "missing") + `
`)

	_, err := c.run()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	link := filepath.Join(c.home, "a")
	assert.Equal(t, target, readlink(t, link))
	assert.Equal(t, []string{link}, c.provenance(), "links made before the abort are recorded")
	_, err = os.Lstat(filepath.Join(c.home, "z"))
	assert.True(t, os.IsNotExist(err))
}

func TestApply_SamePathUnderTwoKeys(t *testing.T) {
	c := newCLI(t)
	a := c.file("dotfiles/a")
	b := c.file("dotfiles/b")
	c.writeConfig(`
~/a:
  path: ` + a + `
~/x/../a:
  path: ` + b + `
`)

	_, err := c.run()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	_, err = os.Lstat(filepath.Join(c.home, "a"))
	assert.True(t, os.IsNotExist(err))
	assert.Nil(t, c.provenance())
}

func TestApply_BaseDirectory(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/inputrc")
	c.writeConfig("~/.inputrc:\n  path: inputrc\n")

	_, err := c.run("-b", filepath.Join(c.root, "dotfiles"))
	require.NoError(t, err)
	assert.Equal(t, target, readlink(t, filepath.Join(c.home, ".inputrc")))
}

func TestClean(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/vimrc")
	c.writeConfig("~/.vimrc:\n  path: " + target + "\n")
	_, err := c.run()
	require.NoError(t, err)

	out, err := c.run("clean")
	require.NoError(t, err)
	assert.Contains(t, out, "1 removed")
	_, err = os.Lstat(filepath.Join(c.home, ".vimrc"))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, c.provenance())
}

func TestTagsCommand(t *testing.T) {
	c := newCLI(t)
	c.writeConfig(`
~/a:
  - path: /a
    tags: [work, laptop]
  - path: /b
    tags: home
`)

	out, err := c.run("tags")
	require.NoError(t, err)
	assert.Equal(t, "home\nlaptop\nwork\n", out)
}

func TestStatusCommand_JSON(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/vimrc")
	c.writeConfig("~/.vimrc:\n  path: " + target + "\n")

	out, err := c.run("--format", "json", "status")
	require.NoError(t, err)

	var doc struct {
		UpToDate bool `json:"up_to_date"`
		Paths    []struct {
			Path  string `json:"path"`
			State string `json:"state"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.False(t, doc.UpToDate)
	require.Len(t, doc.Paths, 1)
	assert.Equal(t, filepath.Join(c.home, ".vimrc"), doc.Paths[0].Path)
	assert.Equal(t, "missing", doc.Paths[0].State)
}

func TestReportCommand(t *testing.T) {
	c := newCLI(t)
	target := c.file("dotfiles/vimrc")
	c.writeConfig("~/.vimrc:\n  path: " + target + "\n")
	_, err := c.run()
	require.NoError(t, err)

	out, err := c.run("report")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(c.home, ".vimrc")+" -> "+target)
}

func TestInvalidMatchPolicy(t *testing.T) {
	c := newCLI(t)
	c.writeConfig("~/a:\n  path: /a\n")

	_, err := c.run("--match", "sometimes", "status")
	require.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("--config", filepath.Join(c.root, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestTopicsCommand(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("topics")
	require.NoError(t, err)
	assert.Contains(t, out, "config")
	assert.Contains(t, out, "--force")

	out, err = c.run("help", "tags")
	require.NoError(t, err)
	assert.Contains(t, out, "intersect")
}

func TestVersionCommand(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "daglink "))
}

func TestCompletionCommand(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "daglink")
}
