// Package resolver computes the transitive closure of selected modules
// over the requires graph from a set of root module names, and the
// readability relation (transitive over requires public edges).
//
// Grounded on the teacher's import-descriptor walk (imports.go): a PE's
// import table is structurally a worklist over dependency names — visit
// a descriptor, enqueue every name it names, detect names already
// visited — which is exactly the shape of spec.md §4.6's algorithm.
package resolver

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/00zhengfu00/modlink/internal/descriptor"
	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/logging"
)

// ArtifactFinder is the capability the resolver needs: resolve a module
// name to an artifact. *finder.Finder and *finder.Chain both satisfy it.
type ArtifactFinder interface {
	Find(name string) (*descriptor.Artifact, bool, error)
}

// Graph is the resolver's output: the selected module set plus the
// readability relation over it.
type Graph struct {
	Selected map[string]*descriptor.Artifact
	// Readability[m] is the set of module names m can read, per
	// spec.md §3 ("a module reads itself implicitly but the relation
	// as stored is irreflexive" — callers should treat self as always
	// readable without consulting this map).
	Readability map[string]map[string]struct{}
}

// CanRead reports whether from can read to, treating self-reads as
// always true per spec.md §8.
func (g *Graph) CanRead(from, to string) bool {
	if from == to {
		return true
	}
	set, ok := g.Readability[from]
	if !ok {
		return false
	}
	_, ok = set[to]
	return ok
}

// Resolver drives the worklist algorithm over one or more independent
// finder layers. Layers are NOT assumed to shadow one another: if two
// layers resolve the same root/dependency name to descriptors of
// different versions, that is a module-version-conflict. Callers who
// want upgrade/system shadowing semantics compose their finders with
// finder.NewChain first and pass the single Chain as the only layer.
type Resolver struct {
	layers []ArtifactFinder
	log    *logrus.Entry
}

// New returns a Resolver over the given independent finder layers.
func New(layers []ArtifactFinder, log *logrus.Entry) *Resolver {
	return &Resolver{layers: layers, log: logging.Or(log, "resolver")}
}

// resolveName consults every layer and combines their answers,
// detecting cross-layer version conflicts.
func (r *Resolver) resolveName(name string) (*descriptor.Artifact, bool, error) {
	var found *descriptor.Artifact
	for _, layer := range r.layers {
		a, ok, err := layer.Find(name)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		if found == nil {
			found = a
			continue
		}
		if !sameVersion(found.Descriptor.Version, a.Descriptor.Version) {
			return nil, false, linkerr.New(linkerr.KindModuleVersionConflict,
				fmt.Sprintf("module %q resolves to both %q@%s and %q@%s", name,
					found.URL, found.Descriptor.Version, a.URL, a.Descriptor.Version)).WithModule(name)
		}
	}
	return found, found != nil, nil
}

// Resolve runs the worklist algorithm of spec.md §4.6 from roots and
// then builds the readability relation.
func (r *Resolver) Resolve(roots []string) (*Graph, error) {
	selected := make(map[string]*descriptor.Artifact)
	queue := append([]string{}, roots...)
	queued := make(map[string]struct{})
	for _, root := range roots {
		queued[root] = struct{}{}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if _, already := selected[name]; already {
			continue
		}

		artifact, ok, err := r.resolveName(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			// A missing optional dependence is only discovered from the
			// requirer's side (it is never itself queued as "optional");
			// a missing root or non-optional requirement is fatal.
			return nil, linkerr.New(linkerr.KindModuleNotFound,
				fmt.Sprintf("module %q not found", name)).WithModule(name)
		}

		selected[name] = artifact
		for _, dep := range artifact.Descriptor.Dependences {
			if dep.Modifiers.Has(descriptor.ModOptional) {
				if _, ok, err := r.resolveName(dep.Target); err != nil {
					return nil, err
				} else if !ok {
					r.log.WithFields(logrus.Fields{"module": name, "optional": dep.Target}).
						Warn("optional dependence not found, skipping")
					continue
				}
			}
			if _, already := queued[dep.Target]; !already {
				queued[dep.Target] = struct{}{}
				queue = append(queue, dep.Target)
			}
		}
	}

	if err := detectCycle(selected); err != nil {
		return nil, err
	}

	readability := buildReadability(selected)

	r.log.WithField("modules", len(selected)).Debug("resolved module graph")
	return &Graph{Selected: selected, Readability: readability}, nil
}

// sameVersion reports whether two version strings name the same
// release. Module versions that happen to be valid semver (most
// published artifacts are) compare by canonical form, so "v1.2" and
// "v1.2.0" are not a spurious module-version-conflict; anything else
// falls back to exact string equality.
func sameVersion(a, b string) bool {
	if a == b {
		return true
	}
	if semver.IsValid(a) && semver.IsValid(b) {
		return semver.Compare(a, b) == 0
	}
	return false
}

// detectCycle rejects any cycle in the requires graph (any modifier),
// per spec.md §9: "requires cycles are rejected at resolve time with a
// format error". Readability is meant to be a DAG at the spec level.
func detectCycle(selected map[string]*descriptor.Artifact) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(selected))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = gray
		path = append(path, name)
		artifact, ok := selected[name]
		if ok {
			for _, dep := range artifact.Descriptor.Dependences {
				if _, inGraph := selected[dep.Target]; !inGraph {
					continue // unresolved optional dependence: not part of the graph
				}
				switch color[dep.Target] {
				case white:
					if err := visit(dep.Target); err != nil {
						return err
					}
				case gray:
					return linkerr.New(linkerr.KindFormat,
						fmt.Sprintf("cyclic requires detected: %v -> %s", path, dep.Target))
				}
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildReadability computes, for each selected module, the set of
// modules it can read: every module it directly requires (any
// modifier) plus the transitive closure reachable by following
// `requires public` edges only (spec.md §4.6 / §3).
func buildReadability(selected map[string]*descriptor.Artifact) map[string]map[string]struct{} {
	direct := make(map[string]map[string]struct{}, len(selected))
	publicAdj := make(map[string][]string, len(selected))

	for name, artifact := range selected {
		d := make(map[string]struct{})
		for _, dep := range artifact.Descriptor.Dependences {
			if _, ok := selected[dep.Target]; !ok {
				continue // unresolved optional dependence: not selected, not readable
			}
			d[dep.Target] = struct{}{}
			if dep.Modifiers.Has(descriptor.ModPublic) {
				publicAdj[name] = append(publicAdj[name], dep.Target)
			}
		}
		direct[name] = d
	}

	// Transitive closure of the public-edges-only graph via a
	// fixed-point worklist, as spec.md §4.6 prescribes.
	publicReach := make(map[string]map[string]struct{}, len(selected))
	for name := range selected {
		publicReach[name] = make(map[string]struct{})
	}
	changed := true
	for changed {
		changed = false
		for name := range selected {
			for _, d := range publicAdj[name] {
				if _, ok := publicReach[name][d]; !ok {
					publicReach[name][d] = struct{}{}
					changed = true
				}
				for x := range publicReach[d] {
					if _, ok := publicReach[name][x]; !ok {
						publicReach[name][x] = struct{}{}
						changed = true
					}
				}
			}
		}
	}

	// A module that reaches d via a public chain also gains every one
	// of d's direct edges (any modifier), not just d's own further
	// public-reachable set: a -> b (public), b -> c (non-public) must
	// still yield CanRead(a, c).
	result := make(map[string]map[string]struct{}, len(selected))
	for name := range selected {
		merged := make(map[string]struct{})
		for d := range direct[name] {
			merged[d] = struct{}{}
		}
		for d := range publicReach[name] {
			merged[d] = struct{}{}
			for x := range direct[d] {
				merged[x] = struct{}{}
			}
		}
		result[name] = merged
	}
	return result
}
