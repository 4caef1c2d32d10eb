package ui_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbertson/daglink/pkg/linker"
	"github.com/timbertson/daglink/pkg/ui"
)

func sampleResult() *linker.Result {
	return &linker.Result{
		Outcomes: map[string]linker.Outcome{
			"/a": linker.Created,
			"/b": linker.NoOp,
			"/c": linker.Skipped,
			"/d": linker.Removed,
		},
		Skips: []linker.PathError{{Path: "/c", Err: fmt.Errorf("not permitted")}},
	}
}

func sampleStatus() *linker.Status {
	return &linker.Status{
		ConfigFile:  "/home/u/.config/daglink/conf",
		UpToDate:    true,
		LastApplied: linker.MarkerState{Present: true, AppliedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		Paths: []linker.PathStatus{
			{Path: "/a", State: linker.StateLinked, Target: "/src/a", Actual: "/src/a", Tracked: true},
			{Path: "/b", State: linker.StateOutdated, Target: "/src/b", Actual: "/old/b", Tracked: true},
			{Path: "/c", State: linker.StateMissing, Target: "/src/c"},
			{Path: "/d", State: linker.StateUnresolved, Err: fmt.Errorf("not cached")},
		},
	}
}

func TestNewRenderer(t *testing.T) {
	for _, f := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		r, err := ui.NewRenderer(f, &bytes.Buffer{})
		require.NoError(t, err, f.String())
		assert.NotNil(t, r)
	}
	_, err := ui.NewRenderer(ui.Format(999), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTextRenderer_Result(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult("apply", sampleResult()))
	assert.Equal(t,
		"created    /a\n"+
			"failed     /c: not permitted\n"+
			"removed    /d\n"+
			"apply: 1 created, 1 removed, 1 unchanged, 1 skipped\n",
		buf.String())
}

func TestTextRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	r, _ := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, r.RenderResult("clean", &linker.Result{Outcomes: map[string]linker.Outcome{}}))
	assert.Equal(t, "clean: nothing to do\n", buf.String())
}

func TestTextRenderer_Status(t *testing.T) {
	var buf bytes.Buffer
	r, _ := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, r.RenderStatus(sampleStatus()))

	out := buf.String()
	assert.Contains(t, out, "Config /home/u/.config/daglink/conf\n")
	assert.Contains(t, out, "unchanged since last applied")
	assert.Contains(t, out, "linked     /a -> /src/a\n")
	assert.Contains(t, out, "outdated   /b -> /old/b (wants /src/b)\n")
	assert.Contains(t, out, "missing    /c (wants /src/c)\n")
	assert.Contains(t, out, "unresolved /d: not cached untracked\n")
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, _ := ui.NewRenderer(ui.FormatJSON, &buf)

	require.NoError(t, r.RenderResult("apply", sampleResult()))
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "apply", doc["command"])
	assert.Equal(t, "created", doc["outcomes"].(map[string]interface{})["/a"])
	assert.Len(t, doc["skipped"], 1)

	buf.Reset()
	require.NoError(t, r.RenderStatus(sampleStatus()))
	doc = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, true, doc["up_to_date"])
	assert.Len(t, doc["paths"], 4)

	buf.Reset()
	require.NoError(t, r.RenderList(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	r, _ := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, r.RenderList([]string{"home", "work"}))
	assert.Equal(t, "home\nwork\n", buf.String())
}
