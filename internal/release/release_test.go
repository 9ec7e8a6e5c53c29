package release

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/00zhengfu00/modlink/internal/descriptor"
	"github.com/00zhengfu00/modlink/internal/resolver"
)

func graphOf(t *testing.T, names ...string) *resolver.Graph {
	t.Helper()
	selected := make(map[string]*descriptor.Artifact)
	for _, n := range names {
		selected[n] = &descriptor.Artifact{
			Descriptor: &descriptor.Descriptor{Name: n, Version: "1.0"},
			URL:        "file:///" + n + ".jmod",
		}
	}
	return &resolver.Graph{Selected: selected, Readability: map[string]map[string]struct{}{}}
}

func TestBuildReleaseIncludesSortedModules(t *testing.T) {
	g := graphOf(t, "b.mod", "a.mod")
	out := string(BuildRelease(g, map[string]string{"JAVA_VERSION": "21"}))

	require.Contains(t, out, "JAVA_VERSION=21\n")
	require.Contains(t, out, "MODULES=a.mod,b.mod\n")
	require.Contains(t, out, "BUILD_RUN_ID=")

	javaIdx := strings.Index(out, "JAVA_VERSION")
	modulesIdx := strings.Index(out, "MODULES")
	require.Less(t, javaIdx, modulesIdx, "extra properties must precede MODULES")
}

func TestBuildReleaseRunIDVariesPerCall(t *testing.T) {
	g := graphOf(t, "a.mod")
	out1 := string(BuildRelease(g, nil))
	out2 := string(BuildRelease(g, nil))
	require.NotEqual(t, out1, out2, "BUILD_RUN_ID must differ across builds")
}

func TestBuildBOMListsEveryModuleSorted(t *testing.T) {
	g := graphOf(t, "z.mod", "a.mod")
	out := string(BuildBOM(g))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "a.mod\t"))
	require.True(t, strings.HasPrefix(lines[1], "z.mod\t"))
}

func TestPropertiesPreservesInsertionOrderOnOverwrite(t *testing.T) {
	p := New()
	p.Set("a", "1")
	p.Set("b", "2")
	p.Set("a", "3")
	require.Equal(t, "a=3\nb=2\n", string(p.Bytes()))
}
