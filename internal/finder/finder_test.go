package finder

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/00zhengfu00/modlink/internal/descriptor"
	"github.com/00zhengfu00/modlink/internal/moduleinfo"
)

func descBytes(t *testing.T, name string, deps ...descriptor.Dependence) []byte {
	t.Helper()
	b, err := moduleinfo.Encode(&descriptor.Descriptor{Name: name, Dependences: deps})
	require.NoError(t, err)
	return b
}

func writeJmod(t *testing.T, path string, descriptorBytes []byte, classFiles map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(jmodMagic[:])
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("classes/module-info.class")
	require.NoError(t, err)
	_, err = w.Write(descriptorBytes)
	require.NoError(t, err)

	for name, content := range classFiles {
		w, err := zw.Create("classes/" + name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeJar(t *testing.T, path string, descriptorBytes []byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("module-info.class")
	require.NoError(t, err)
	_, err = w.Write(descriptorBytes)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeExpanded(t *testing.T, dir string, descriptorBytes []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "module-info.class"), descriptorBytes, 0o644))
}

func TestFindPackedArtifact(t *testing.T) {
	dir := t.TempDir()
	writeJmod(t, filepath.Join(dir, "a.jmod"), descBytes(t, "a"), map[string][]byte{
		"a/pkg/Foo.class": []byte("x"),
	})

	f := New([]string{dir}, nil, nil)
	a, ok, err := f.Find("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, descriptor.KindPacked, a.ArtifactOf)
	require.True(t, a.HasPackage("a.pkg"))
	require.False(t, a.HasPackage("module-info"))
}

func TestFindCompressedArtifact(t *testing.T) {
	dir := t.TempDir()
	writeJar(t, filepath.Join(dir, "b.jar"), descBytes(t, "b"))

	f := New([]string{dir}, nil, nil)
	a, ok, err := f.Find("b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, descriptor.KindCompressed, a.ArtifactOf)
}

func TestFindExpandedArtifact(t *testing.T) {
	dir := t.TempDir()
	writeExpanded(t, filepath.Join(dir, "c"), descBytes(t, "c"))

	f := New([]string{dir}, nil, nil)
	a, ok, err := f.Find("c")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, descriptor.KindExpanded, a.ArtifactOf)
}

func TestDuplicateModuleInSameDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	writeJmod(t, filepath.Join(dir, "foo1.jmod"), descBytes(t, "foo"), nil)
	writeJmod(t, filepath.Join(dir, "foo2.jmod"), descBytes(t, "foo"), nil)

	f := New([]string{dir}, nil, nil)
	_, _, err := f.Find("foo")
	require.Error(t, err)
}

func TestFirstDirectoryWinsAcrossDirectories(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	writeJmod(t, filepath.Join(dir1, "a.jmod"), descBytes(t, "a"), nil)
	writeJmod(t, filepath.Join(dir2, "a.jmod"), descBytes(t, "a"), nil)

	f := New([]string{dir1, dir2}, nil, nil)
	a, ok, err := f.Find("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir1, "a.jmod"), a.URL)
}

func TestChainUpgradeShadowsSystem(t *testing.T) {
	upgradeDir := t.TempDir()
	systemDir := t.TempDir()
	writeJmod(t, filepath.Join(upgradeDir, "a.jmod"), descBytes(t, "a"), nil)
	writeJmod(t, filepath.Join(systemDir, "a.jmod"), descBytes(t, "a"), nil)

	upgrade := New([]string{upgradeDir}, nil, nil)
	system := New([]string{systemDir}, nil, nil)
	chain := NewChain(upgrade, system)

	a, ok, err := chain.Find("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(upgradeDir, "a.jmod"), a.URL)
}

func TestFindMissingReturnsFalseNoError(t *testing.T) {
	dir := t.TempDir()
	f := New([]string{dir}, nil, nil)
	_, ok, err := f.Find("nope")
	require.NoError(t, err)
	require.False(t, ok)
}
