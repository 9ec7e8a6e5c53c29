// Package pool implements the in-memory resource pool that flows between
// pipeline stages: an ordered, add-only collection of entries with a
// secondary (module, path) index rejecting duplicates at insert time.
package pool

import (
	"fmt"

	"github.com/00zhengfu00/modlink/internal/linkerr"
)

// Kind classifies a resource entry for on-disk placement (§6's
// lib/modules vs bin/ vs lib/ vs conf/ split).
type Kind int

const (
	KindClassOrResource Kind = iota
	KindNativeLib
	KindNativeCmd
	KindConfig
	KindOther
)

// Entry is one (module, path, bytes, kind) resource flowing through the
// pipeline. Ownership transfers stage to stage: each stage consumes an
// input Pool and produces a fresh output Pool, never mutating Bytes of
// an entry it did not itself construct.
type Entry struct {
	Module string
	Path   string
	Bytes  []byte
	Kind   Kind

	// UncompressedSize is set by a compressor stage when Bytes holds a
	// compressed representation smaller than the original content; zero
	// means Bytes is the stored (uncompressed) content, matching the
	// image format's "compressedSize == 0 means stored" convention.
	UncompressedSize uint64
	CompressorID     uint8
}

type key struct {
	module, path string
}

// Pool is an ordered collection of Entry with O(1) duplicate detection
// on (module, path). The zero value is not usable; construct with New.
type Pool struct {
	entries []Entry
	index   map[key]int
}

// New returns an empty Pool.
func New() *Pool {
	return &Pool{index: make(map[key]int)}
}

// Add appends entry to the pool, preserving insertion order. It fails
// with linkerr.KindDuplicateEntry if (Module, Path) already exists.
func (p *Pool) Add(e Entry) error {
	k := key{e.Module, e.Path}
	if _, exists := p.index[k]; exists {
		return linkerr.New(linkerr.KindDuplicateEntry,
			fmt.Sprintf("duplicate resource path %q in module %q", e.Path, e.Module))
	}
	p.index[k] = len(p.entries)
	p.entries = append(p.entries, e)
	return nil
}

// Get looks up an entry by (module, path).
func (p *Pool) Get(module, path string) (Entry, bool) {
	idx, ok := p.index[key{module, path}]
	if !ok {
		return Entry{}, false
	}
	return p.entries[idx], true
}

// Len returns the number of entries currently in the pool.
func (p *Pool) Len() int { return len(p.entries) }

// Iter yields entries in insertion order, which is the linearization
// order for every downstream observer (spec.md §5).
func (p *Pool) Iter() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// FilterModule returns, in insertion order, the entries whose Module
// equals module.
func (p *Pool) FilterModule(module string) []Entry {
	var out []Entry
	for _, e := range p.entries {
		if e.Module == module {
			out = append(out, e)
		}
	}
	return out
}
