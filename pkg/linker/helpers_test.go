package linker_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/executor"
	"github.com/timbertson/daglink/pkg/linker"
	"github.com/timbertson/daglink/pkg/provenance"
	"github.com/timbertson/daglink/pkg/testutil"
	"github.com/timbertson/daglink/pkg/types"
)

const storeFile = "/home/user/.config/daglink/installed"

type env struct {
	fs        *testutil.MemoryFS
	shell     *testutil.RootShell
	confirmer *testutil.Confirmer
	store     *provenance.Store
	out       *bytes.Buffer
	resolver  *fakeResolver
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mfs := testutil.NewMemoryFS()
	store, err := provenance.Load(mfs, storeFile)
	require.NoError(t, err)
	return &env{
		fs:        mfs,
		shell:     &testutil.RootShell{FS: mfs.AsRoot()},
		confirmer: &testutil.Confirmer{Answer: true},
		store:     store,
		out:       &bytes.Buffer{},
		resolver:  &fakeResolver{paths: map[string]string{}},
	}
}

func (e *env) linker(policy executor.Policy) *linker.Linker {
	ex := executor.New(e.fs, e.shell, e.confirmer, policy, e.out)
	return linker.New(e.fs, ex, e.store, e.resolver, "/base")
}

func (e *env) engine(policy executor.Policy) *linker.Engine {
	return linker.NewEngine(e.linker(policy), nil)
}

func (e *env) file(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, e.fs.WriteFile(path, []byte(path), 0644))
}

func (e *env) link(t *testing.T, target, path string) {
	t.Helper()
	require.NoError(t, e.fs.MkdirAll(dirOf(path), 0755))
	require.NoError(t, e.fs.Symlink(target, path))
}

func dirOf(path string) string {
	for i := len(path) - 1; i > 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "/"
}

type fakeResolver struct {
	paths map[string]string
	calls []string
}

func (r *fakeResolver) Resolve(_ context.Context, uri, extract string) (string, error) {
	r.calls = append(r.calls, uri)
	p, ok := r.paths[uri]
	if !ok {
		return "", errors.Newf(errors.ErrNotFound, "no implementation of %s", uri)
	}
	if extract != "" {
		p += "/" + extract
	}
	return p, nil
}

func local(path string, tags ...string) types.Directive {
	return types.Directive{Source: types.LocalPath{Path: path}, Tags: types.NewTagSet(tags...)}
}

func remote(uri, extract string, tags ...string) types.Directive {
	return types.Directive{Source: types.RemoteRef{URI: uri, Extract: extract}, Tags: types.NewTagSet(tags...)}
}

func optional(d types.Directive) types.Directive {
	d.Optional = true
	return d
}

func config(entries ...types.Entry) *types.Config {
	return &types.Config{Entries: entries}
}

func entry(path string, ds ...types.Directive) types.Entry {
	return types.Entry{Path: path, Directives: ds}
}

// reload simulates a fresh run over the same filesystem
func reload(t *testing.T, e *env) *env {
	t.Helper()
	store, err := provenance.Load(e.fs, storeFile)
	require.NoError(t, err)
	e.store = store
	e.out.Reset()
	return e
}
