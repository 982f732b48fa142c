package testutil

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// WriteFiles creates each file (and its parent directories) with the
// given content.
func WriteFiles(t *testing.T, fsys types.FS, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
}

// AssertFileContent checks that path exists with exactly content.
func AssertFileContent(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	data, err := fsys.ReadFile(path)
	if assert.NoError(t, err, "reading %s", path) {
		assert.Equal(t, content, string(data), "content of %s", path)
	}
}

// AssertNotExists checks that path is absent.
func AssertNotExists(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	_, err := fsys.Stat(path)
	assert.True(t, stderrors.Is(err, fs.ErrNotExist), "expected %s to be absent, stat err: %v", path, err)
}
