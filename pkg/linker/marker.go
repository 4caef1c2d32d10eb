package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	derrors "github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/internal/hashutil"
	"github.com/timbertson/daglink/pkg/types"
)

// Marker records the config checksum of the last run that finished with
// nothing skipped or failed.
type Marker struct {
	fs   types.FS
	file string
}

// MarkerState is the content of the marker file
type MarkerState struct {
	Present   bool
	Checksum  string
	AppliedAt time.Time
}

// NewMarker creates a Marker stored at file
func NewMarker(fsys types.FS, file string) *Marker {
	return &Marker{fs: fsys, file: file}
}

// File returns where the marker is stored
func (m *Marker) File() string {
	return m.file
}

// Record stores the checksum of configFile as fully applied at now
func (m *Marker) Record(configFile string, now time.Time) error {
	sum, err := hashutil.FileChecksum(m.fs, configFile)
	if err != nil {
		return derrors.Wrapf(err, derrors.ErrFileAccess, "failed to checksum %s", configFile)
	}

	if err := m.fs.MkdirAll(filepath.Dir(m.file), 0755); err != nil {
		return derrors.Wrapf(err, derrors.ErrDirCreate, "failed to create %s", filepath.Dir(m.file))
	}
	tmp := m.file + ".tmp"
	content := fmt.Sprintf("%s %s\n", sum, now.UTC().Format(time.RFC3339))
	if err := m.fs.WriteFile(tmp, []byte(content), 0644); err != nil {
		return derrors.Wrapf(err, derrors.ErrFileWrite, "failed to write %s", tmp)
	}
	if err := m.fs.Rename(tmp, m.file); err != nil {
		_ = m.fs.Remove(tmp)
		return derrors.Wrapf(err, derrors.ErrFileWrite, "failed to replace %s", m.file)
	}
	return nil
}

// Read loads the marker. A missing marker is not an error.
func (m *Marker) Read() (MarkerState, error) {
	data, err := m.fs.ReadFile(m.file)
	if errors.Is(err, fs.ErrNotExist) {
		return MarkerState{}, nil
	}
	if err != nil {
		return MarkerState{}, derrors.Wrapf(err, derrors.ErrFileAccess, "failed to read %s", m.file)
	}

	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return MarkerState{}, derrors.Newf(derrors.ErrFileAccess, "malformed marker %s", m.file)
	}
	at, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return MarkerState{}, derrors.Wrapf(err, derrors.ErrFileAccess, "malformed marker %s", m.file)
	}
	return MarkerState{Present: true, Checksum: fields[0], AppliedAt: at}, nil
}

// UpToDate reports whether configFile is unchanged since it was last
// fully applied
func (m *Marker) UpToDate(configFile string) (bool, MarkerState, error) {
	state, err := m.Read()
	if err != nil || !state.Present {
		return false, state, err
	}
	sum, err := hashutil.FileChecksum(m.fs, configFile)
	if err != nil {
		return false, state, derrors.Wrapf(err, derrors.ErrFileAccess, "failed to checksum %s", configFile)
	}
	return sum == state.Checksum, state, nil
}
