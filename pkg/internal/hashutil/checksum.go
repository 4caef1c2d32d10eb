package hashutil

import (
	"crypto/sha256"
	"fmt"

	"github.com/timbertson/daglink/pkg/types"
)

// Sum returns the "sha256:<hex>" checksum of data
func Sum(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// FileChecksum returns the checksum of the file at path
func FileChecksum(fsys types.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Sum(data), nil
}
