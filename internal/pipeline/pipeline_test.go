package pipeline

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"

	"github.com/00zhengfu00/modlink/internal/pool"
)

func buildPipeline(t *testing.T, src string) *Pipeline {
	t.Helper()
	reg := NewRegistry()
	cfg, err := ParseConfig(strings.NewReader(src), reg)
	require.NoError(t, err)
	p, err := Build(cfg, reg, nil)
	require.NoError(t, err)
	return p
}

func TestPipelineStripDebugThenZip(t *testing.T) {
	p := buildPipeline(t, "strip-java-debug=on\nzip=on\n")

	in := pool.New()
	payload := append([]byte(strings.Repeat("hello world ", 20)), debugMarker...)
	payload = append(payload, []byte("trailingdebugbytes")...)
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/Foo.class", Bytes: payload, Kind: pool.KindClassOrResource}))

	out, err := p.Run(in)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())

	e, ok := out.Get("m", "/m/Foo.class")
	require.True(t, ok)
	require.Equal(t, CompressorDeflate, e.CompressorID)
	require.Less(t, len(e.Bytes), len(payload))

	zr := flate.NewReader(bytes.NewReader(e.Bytes))
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("hello world ", 20), string(decoded))
}

func TestPipelineExcludeResourcesFilter(t *testing.T) {
	p := buildPipeline(t, "resources.filter=exclude-resources\nexclude-resources.argument=*.jcov,**/META-INF/**\n")

	in := pool.New()
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/Foo.class", Bytes: []byte("a"), Kind: pool.KindClassOrResource}))
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/Foo.jcov", Bytes: []byte("b"), Kind: pool.KindClassOrResource}))
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/META-INF/MANIFEST.MF", Bytes: []byte("c"), Kind: pool.KindClassOrResource}))

	out, err := p.Run(in)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	_, ok := out.Get("m", "/m/Foo.class")
	require.True(t, ok)
}

func TestPipelineToggleDefaultsOff(t *testing.T) {
	p := buildPipeline(t, "resources.transformer=strip-java-debug\n")
	require.Equal(t, 0, p.Len(), "missing argument must default strip-java-debug to off")

	in := pool.New()
	payload := append([]byte("body"), debugMarker...)
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/Foo.class", Bytes: payload}))
	out, err := p.Run(in)
	require.NoError(t, err)
	e, _ := out.Get("m", "/m/Foo.class")
	require.Equal(t, payload, e.Bytes)
}

func TestPipelineSortResources(t *testing.T) {
	p := buildPipeline(t, "resources.sorter=sort-resources\nsort-resources.argument=/m/first,/m/second\n")

	in := pool.New()
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/second/X", Bytes: []byte("x")}))
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/other/X", Bytes: []byte("y")}))
	require.NoError(t, in.Add(pool.Entry{Module: "m", Path: "/m/first/X", Bytes: []byte("z")}))

	out, err := p.Run(in)
	require.NoError(t, err)
	entries := out.Iter()
	require.Equal(t, "/m/first/X", entries[0].Path)
	require.Equal(t, "/m/second/X", entries[1].Path)
	require.Equal(t, "/m/other/X", entries[2].Path)
}

func TestBuildRejectsPluginDeclaredUnderWrongCategory(t *testing.T) {
	reg := NewRegistry()
	cfg, err := ParseConfig(strings.NewReader("resources.sorter=strip-java-debug\n"), reg)
	require.NoError(t, err)
	_, err = Build(cfg, reg, nil)
	require.Error(t, err)
}
