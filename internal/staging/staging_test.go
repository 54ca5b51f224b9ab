package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	require.Equal(t, "file7.txt", RawName(7))
	require.Equal(t, "12.json", NormalizedName(12))

	n, ok := NormalizedIndex("12.json")
	require.True(t, ok)
	require.Equal(t, 12, n)

	for _, bad := range []string{"file1.txt", "x.json", "0.json", "-3.json", ".json"} {
		_, ok := NormalizedIndex(bad)
		require.False(t, ok, bad)
	}
}

func TestSortNormalized(t *testing.T) {
	names := []string{"10.json", "2.json", "notes.json", "1.json", "11.json"}
	SortNormalized(names)
	require.Equal(t, []string{"1.json", "2.json", "10.json", "11.json", "notes.json"}, names)
}

func TestSortRaw(t *testing.T) {
	names := []string{"file10.txt", "file2.txt", "readme.txt", "file1.txt"}
	SortRaw(names)
	require.Equal(t, []string{"file1.txt", "file2.txt", "file10.txt", "readme.txt"}, names)

	_, ok := RawIndex("file0.txt")
	require.False(t, ok)
	n, ok := RawIndex("file42.txt")
	require.True(t, ok)
	require.Equal(t, 42, n)
}

func TestResetKeepsHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lockName), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	require.NoError(t, Reset(dir))

	names, err := List(dir)
	require.NoError(t, err)
	require.Empty(t, names)
	_, err = os.Stat(filepath.Join(dir, lockName))
	require.NoError(t, err)
}

func TestResetCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging", "extracted")
	require.NoError(t, Reset(dir))
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "3.json")
	require.NoError(t, WriteFile(path, []byte(`{"a":1}`)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(b))

	names, err := List(filepath.Dir(path))
	require.NoError(t, err)
	require.Equal(t, []string{"3.json"}, names)
}

func TestAcquireLockIsExclusive(t *testing.T) {
	root := t.TempDir()

	first, err := AcquireLock(root)
	require.NoError(t, err)

	_, err = AcquireLock(root)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	again, err := AcquireLock(root)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}
