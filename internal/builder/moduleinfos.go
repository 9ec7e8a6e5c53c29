package builder

import (
	"encoding/json"
	"sort"

	"github.com/00zhengfu00/modlink/internal/resolver"
)

// moduleInfoEntry is one module's row within the synthetic module-infos
// blob: every module of this loader partition it can read (itself
// included), plus the names of the packages its descriptor exports.
type moduleInfoEntry struct {
	Module  string   `json:"module"`
	Reads   []string `json:"reads"`
	Exports []string `json:"exports,omitempty"`
}

// buildModuleInfos serializes the per-loader module metadata blob of
// spec.md §4.9 step 3c: a snapshot of the readability graph and package
// exports, restricted to the modules selected into this partition. The
// binary image format treats this as an opaque content blob like any
// other resource; only the loader at runtime needs to understand it, so
// JSON is a deliberately simple wire encoding (mirroring moduleinfo's
// stand-in for the out-of-scope class-file collaborator).
func buildModuleInfos(graph *resolver.Graph, partition map[string]struct{}) ([]byte, error) {
	names := make([]string, 0, len(partition))
	for name := range partition {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]moduleInfoEntry, 0, len(names))
	for _, name := range names {
		artifact := graph.Selected[name]
		var reads []string
		for other := range partition {
			if graph.CanRead(name, other) {
				reads = append(reads, other)
			}
		}
		sort.Strings(reads)

		var exports []string
		for _, exp := range artifact.Descriptor.Exports {
			exports = append(exports, exp.Package)
		}
		sort.Strings(exports)

		entries = append(entries, moduleInfoEntry{Module: name, Reads: reads, Exports: exports})
	}

	return json.Marshal(entries)
}
