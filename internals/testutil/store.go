package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"schoolstaff_backend/internals/helpers/filestore"
)

// NewStore is a local File Store rooted in a temp dir.
func NewStore(t *testing.T) (filestore.Store, string) {
	t.Helper()
	root := t.TempDir()
	st, err := filestore.NewLocal(root, filestore.Options{MaxW: 64, MaxH: 64, Quality: 75, MaxBytes: 1 << 20})
	require.NoError(t, err)
	return st, root
}

// FileExists reports whether folder/name is on disk under root.
func FileExists(t *testing.T, root, folder, name string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, folder, name))
	return err == nil
}
