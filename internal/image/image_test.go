package image

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildAndOpen(t *testing.T, entries map[string]string) *Reader {
	t.Helper()

	order, err := ParseEndian("native")
	require.NoError(t, err)

	w := New(order, len(entries))
	for path, content := range entries {
		w.AddLocation(path, []byte(content), 0, true, 0)
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "test.jimage")
	f, err := os.Create(out)
	require.NoError(t, err)

	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(out)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestWriteThenFindSingleEntry(t *testing.T) {
	r := buildAndOpen(t, map[string]string{
		"/a/module-info.class": "MODULE",
	})

	loc, ok := r.Find("/a/module-info.class")
	require.True(t, ok)
	require.Equal(t, uint64(len("MODULE")), loc.UncompressedSize)
	require.Equal(t, "MODULE", string(r.ContentAt(loc)))
}

func TestWriteThenFindManyEntriesWithCollisions(t *testing.T) {
	entries := map[string]string{}
	for i := 0; i < 64; i++ {
		entries[filepath.ToSlash(filepath.Join("/a", "pkg", "Class"+string(rune('A'+i%26))+string(rune('0'+i/26))+".class"))] = "x"
	}

	r := buildAndOpen(t, entries)
	for path := range entries {
		loc, ok := r.Find(path)
		require.True(t, ok, "path %s should be found", path)
		require.Equal(t, path, loc.FullPath)
	}
}

func TestFindMissingReturnsFalse(t *testing.T) {
	r := buildAndOpen(t, map[string]string{"/a/module-info.class": "x"})
	_, ok := r.Find("/does/not/exist")
	require.False(t, ok)
}

func TestContentOffsetsWithinRegion(t *testing.T) {
	r := buildAndOpen(t, map[string]string{
		"/a/module-info.class": "one",
		"/a/pkg/A.class":       "two-longer",
	})

	locA, ok := r.Find("/a/module-info.class")
	require.True(t, ok)
	locB, ok := r.Find("/a/pkg/A.class")
	require.True(t, ok)

	end := r.ContentRegionEnd()
	require.LessOrEqual(t, locA.ContentOffset+locA.UncompressedSize, end-r.contentRegionStartForTest())
	require.LessOrEqual(t, locB.ContentOffset+locB.UncompressedSize, end-r.contentRegionStartForTest())
}

// contentRegionStartForTest exposes contentStart for the invariant check
// above without making the field itself exported API.
func (r *Reader) contentRegionStartForTest() uint64 { return uint64(r.contentStart) }

func TestWrongEndianDetected(t *testing.T) {
	order, err := ParseEndian("native")
	require.NoError(t, err)
	w := New(order, 1)
	w.AddLocation("/a/module-info.class", []byte("x"), 0, true, 0)

	dir := t.TempDir()
	out := filepath.Join(dir, "test.jimage")
	f, err := os.Create(out)
	require.NoError(t, err)
	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	// Flip the magic's byte order in place to simulate a file written on
	// a host of the opposite endianness.
	data[0], data[1], data[2], data[3] = data[3], data[2], data[1], data[0]
	require.NoError(t, os.WriteFile(out, data, 0o644))

	_, err = Open(out)
	require.Error(t, err)
}
