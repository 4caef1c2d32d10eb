package errors_test

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbertson/daglink/pkg/errors"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain",
			err:  errors.New(errors.ErrSkipped, "not permitted to remove existing contents at /etc/hosts"),
			want: "[SKIPPED] not permitted to remove existing contents at /etc/hosts",
		},
		{
			name: "formatted",
			err:  errors.Newf(errors.ErrConfigValid, "non-existent target for %s: %s", "~/.vimrc", "/dotfiles/vimrc"),
			want: "[CONFIG_INVALID] non-existent target for ~/.vimrc: /dotfiles/vimrc",
		},
		{
			name: "wrapped",
			err:  errors.Wrap(fs.ErrPermission, errors.ErrEscalation, "sudo rm /etc/hosts failed"),
			want: "[ESCALATION] sudo rm /etc/hosts failed: permission denied",
		},
		{
			name: "wrapped formatted",
			err:  errors.Wrapf(fs.ErrNotExist, errors.ErrConfigLoad, "failed to read config %s", "/home/me/.config/daglink/conf"),
			want: "[CONFIG_LOAD] failed to read config /home/me/.config/daglink/conf: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNew_InitializesDetails(t *testing.T) {
	err := errors.New(errors.ErrProvenance, "corrupt record")
	require.NotNil(t, err.Details)
	assert.Nil(t, err.Unwrap())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrFileAccess, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrFileAccess, "ignored %d", 1))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrConfigValid, "too many applicable directives").
		WithDetail("path", "~/bin/tool").
		WithDetail("count", 2)

	assert.Equal(t, map[string]interface{}{"path": "~/bin/tool", "count": 2}, errors.GetErrorDetails(err))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))

	bare := &errors.DaglinkError{Code: errors.ErrInternal}
	bare.WithDetail("k", "v")
	assert.Equal(t, "v", bare.Details["k"])
}

func TestIs_ComparesCodes(t *testing.T) {
	err := errors.New(errors.ErrSkipped, "declined")

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrSkipped, "other message")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrEscalation, "declined")))
	assert.False(t, stderrors.Is(err, stderrors.New("declined")))
}

func TestErrorCodes_ThroughWrapping(t *testing.T) {
	root := stderrors.New("read-only file system")
	access := errors.Wrap(root, errors.ErrFileWrite, "failed to write provenance record")
	outer := errors.Wrap(access, errors.ErrProvenance, "failed to close store")
	wrapped := fmt.Errorf("apply: %w", outer)

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrProvenance))
	assert.Equal(t, errors.ErrProvenance, errors.GetErrorCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))

	var inner *errors.DaglinkError
	require.True(t, stderrors.As(outer.Unwrap(), &inner))
	assert.Equal(t, errors.ErrFileWrite, inner.Code)

	assert.False(t, errors.IsErrorCode(root, errors.ErrFileWrite))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(root))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestIsSkipped(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"skipped", errors.New(errors.ErrSkipped, "denied"), true},
		{"not found", errors.New(errors.ErrNotFound, "no implementation cached"), true},
		{"wrapped skipped", fmt.Errorf("link: %w", errors.New(errors.ErrSkipped, "denied")), true},
		{"config error", errors.New(errors.ErrConfigValid, "ambiguous"), false},
		{"escalation", errors.New(errors.ErrEscalation, "sudo failed"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsSkipped(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	assert.True(t, errors.IsFatal(errors.New(errors.ErrConfigValid, "missing target")))
	assert.True(t, errors.IsFatal(fmt.Errorf("select: %w", errors.New(errors.ErrConfigValid, "ambiguous"))))
	assert.False(t, errors.IsFatal(errors.New(errors.ErrEscalation, "sudo failed")))
	assert.False(t, errors.IsFatal(errors.New(errors.ErrSkipped, "declined")))
}
