package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/00zhengfu00/modlink/internal/descriptor"
)

// fakeFinder is a simple in-memory ArtifactFinder for resolver tests.
type fakeFinder map[string]*descriptor.Artifact

func (f fakeFinder) Find(name string) (*descriptor.Artifact, bool, error) {
	a, ok := f[name]
	return a, ok, nil
}

func artifact(name string, deps ...descriptor.Dependence) *descriptor.Artifact {
	return &descriptor.Artifact{
		Descriptor: &descriptor.Descriptor{Name: name, Dependences: deps},
		URL:        "mem://" + name,
	}
}

func TestMinimalResolve(t *testing.T) {
	f := fakeFinder{"a": artifact("a")}
	g, err := New([]ArtifactFinder{f}, nil).Resolve([]string{"a"})
	require.NoError(t, err)
	require.Len(t, g.Selected, 1)
	require.True(t, g.CanRead("a", "a"))
}

func TestPublicReExport(t *testing.T) {
	f := fakeFinder{
		"a": artifact("a", descriptor.Dependence{Target: "b", Modifiers: descriptor.ModPublic}),
		"b": artifact("b", descriptor.Dependence{Target: "c"}),
		"c": artifact("c"),
	}
	g, err := New([]ArtifactFinder{f}, nil).Resolve([]string{"a"})
	require.NoError(t, err)
	require.Len(t, g.Selected, 3)
	require.True(t, g.CanRead("a", "b"))
	require.True(t, g.CanRead("a", "c"), "public re-export must propagate a's readability to c")
	require.False(t, g.CanRead("c", "a"))
}

func TestOptionalMissingIsNotAnError(t *testing.T) {
	f := fakeFinder{
		"a": artifact("a", descriptor.Dependence{Target: "z", Modifiers: descriptor.ModOptional}),
	}
	g, err := New([]ArtifactFinder{f}, nil).Resolve([]string{"a"})
	require.NoError(t, err)
	require.Len(t, g.Selected, 1)
	_, ok := g.Selected["z"]
	require.False(t, ok)
}

func TestNonOptionalMissingFails(t *testing.T) {
	f := fakeFinder{
		"a": artifact("a", descriptor.Dependence{Target: "z"}),
	}
	_, err := New([]ArtifactFinder{f}, nil).Resolve([]string{"a"})
	require.Error(t, err)
}

func TestVersionConflictAcrossIndependentLayers(t *testing.T) {
	l1 := fakeFinder{"a": {Descriptor: &descriptor.Descriptor{Name: "a", Version: "1"}, URL: "layer1://a"}}
	l2 := fakeFinder{"a": {Descriptor: &descriptor.Descriptor{Name: "a", Version: "2"}, URL: "layer2://a"}}

	_, err := New([]ArtifactFinder{l1, l2}, nil).Resolve([]string{"a"})
	require.Error(t, err)
}

func TestRequiresCycleRejected(t *testing.T) {
	f := fakeFinder{
		"a": artifact("a", descriptor.Dependence{Target: "b"}),
		"b": artifact("b", descriptor.Dependence{Target: "a"}),
	}
	_, err := New([]ArtifactFinder{f}, nil).Resolve([]string{"a"})
	require.Error(t, err)
}

func TestNonPublicDependenceDoesNotPropagate(t *testing.T) {
	f := fakeFinder{
		"a": artifact("a", descriptor.Dependence{Target: "b"}), // not public
		"b": artifact("b", descriptor.Dependence{Target: "c", Modifiers: descriptor.ModPublic}),
		"c": artifact("c"),
	}
	g, err := New([]ArtifactFinder{f}, nil).Resolve([]string{"a"})
	require.NoError(t, err)
	require.True(t, g.CanRead("a", "b"))
	require.False(t, g.CanRead("a", "c"), "non-public requires must not forward b's own public exports to a")
	require.True(t, g.CanRead("b", "c"))
}
