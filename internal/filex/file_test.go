package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	dir, err := EnsureDir(filepath.Join(base, "uploads", "nested"))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(dir))
	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())

	again, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDir(filepath.Join(blocker, "sub"))
	require.Error(t, err)
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"report.pdf":         "report.pdf",
		"../../etc/passwd":   "passwd",
		`C:\Users\me\a.txt`:  "a.txt",
		"  spaced.txt ":      "spaced.txt",
		"":                   "file",
		"..":                 "file",
		"dir/":               "dir",
		"bad\x00name\n.txt":  "badname.txt",
		"файл с пробелом.md": "файл с пробелом.md",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in), "input %q", in)
	}
}

func TestWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "blobs")
	assert.True(t, Within(root, filepath.Join(root, "u1", "general", "a.txt")))
	assert.False(t, Within(root, filepath.Join(root, "..", "other")))
	assert.False(t, Within(root, root+"-evil"))
	assert.True(t, Within(root, root))
}
