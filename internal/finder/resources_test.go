package finder

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/00zhengfu00/modlink/internal/pool"
)

func TestReadResourcesPacked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jmod")

	var buf bytes.Buffer
	buf.Write(jmodMagic[:])
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"classes/module-info.class": string(descBytes(t, "a")),
		"classes/a/pkg/Foo.class":   "classbytes",
		"bin/a-native":              "binbytes",
		"lib/liba.so":               "libbytes",
		"conf/a.properties":         "k=v",
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f := New([]string{dir}, nil, nil)
	a, ok, err := f.Find("a")
	require.NoError(t, err)
	require.True(t, ok)

	entries, err := ReadResources(a)
	require.NoError(t, err)

	byPath := make(map[string]pool.Entry)
	for _, e := range entries {
		byPath[e.Path] = e
	}
	require.Len(t, entries, 5)

	require.Equal(t, pool.KindClassOrResource, byPath["/a/module-info.class"].Kind)
	require.Equal(t, pool.KindClassOrResource, byPath["/a/a/pkg/Foo.class"].Kind)
	require.Equal(t, pool.KindNativeCmd, byPath["/a/bin/a-native"].Kind)
	require.Equal(t, pool.KindNativeLib, byPath["/a/lib/liba.so"].Kind)
	require.Equal(t, pool.KindConfig, byPath["/a/conf/a.properties"].Kind)
}

func TestReadResourcesExpanded(t *testing.T) {
	dir := t.TempDir()
	modDir := filepath.Join(dir, "c")
	writeExpanded(t, modDir, descBytes(t, "c"))
	require.NoError(t, os.MkdirAll(filepath.Join(modDir, "c"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modDir, "c", "Bar.class"), []byte("x"), 0o644))

	f := New([]string{dir}, nil, nil)
	a, ok, err := f.Find("c")
	require.NoError(t, err)
	require.True(t, ok)

	entries, err := ReadResources(a)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	require.ElementsMatch(t, []string{"/c/module-info.class", "/c/c/Bar.class"}, paths)
}
