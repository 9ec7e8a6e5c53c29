package descriptor

// Kind identifies which on-disk shape an artifact was read from.
type Kind int

const (
	KindPacked Kind = iota
	KindCompressed
	KindExpanded
)

func (k Kind) String() string {
	switch k {
	case KindPacked:
		return "packed"
	case KindCompressed:
		return "compressed"
	case KindExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// Artifact is a concrete on-disk form of a module: its descriptor, the
// set of packages it contains (derived by scanning once), and its
// location. Artifacts are immutable once constructed; the package set is
// not re-read after the initial scan (spec.md §3).
type Artifact struct {
	Descriptor *Descriptor
	Packages   map[string]struct{}
	URL        string
	ArtifactOf Kind
}

// HasPackage reports whether pkg is present in the artifact's derived
// package set.
func (a *Artifact) HasPackage(pkg string) bool {
	_, ok := a.Packages[pkg]
	return ok
}
