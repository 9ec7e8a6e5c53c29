// Package release emits the two summary artifacts spec.md §6 names in
// the on-disk image tree but scopes out of the core as an external
// collaborator: the `release` properties file and the optional `bom`
// build manifest.
//
// Grounded on the teacher's version.go, which parses a PE's
// VS_VERSION_INFO key/value string table; this package runs that same
// key=value shape in reverse, as a writer instead of a parser.
package release

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/00zhengfu00/modlink/internal/resolver"
)

// Properties is an ordered key=value property set, written in
// insertion order so BUILD_RUN_ID and MODULES always appear last and
// stay in a stable position across runs with the same module set.
type Properties struct {
	keys   []string
	values map[string]string
}

// New returns an empty Properties set.
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Set records a key=value pair, overwriting any prior value for key
// without disturbing its position in insertion order.
func (p *Properties) Set(key, value string) {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Bytes renders the properties file as `key=value\n` lines in
// insertion order.
func (p *Properties) Bytes() []byte {
	var buf bytes.Buffer
	for _, k := range p.keys {
		fmt.Fprintf(&buf, "%s=%s\n", k, p.values[k])
	}
	return buf.Bytes()
}

// BuildRelease constructs the `release` properties file for a resolved
// graph: one MODULES=<csv> entry (sorted module names) plus a
// build-run identifier used to correlate a release file with its bom,
// per spec.md §6.
func BuildRelease(graph *resolver.Graph, extra map[string]string) []byte {
	names := make([]string, 0, len(graph.Selected))
	for name := range graph.Selected {
		names = append(names, name)
	}
	sort.Strings(names)

	props := New()
	for _, k := range sortedKeys(extra) {
		props.Set(k, extra[k])
	}
	props.Set("MODULES", strings.Join(names, ","))
	props.Set("BUILD_RUN_ID", uuid.NewString())
	return props.Bytes()
}

// BOM is one module's entry in the optional build manifest.
type BOM struct {
	Module  string
	Version string
	Source  string
}

// BuildBOM renders a UTF-8 manifest listing module name, version, and
// source artifact path for every selected module, one per line,
// sorted by module name for reproducibility.
func BuildBOM(graph *resolver.Graph) []byte {
	entries := make([]BOM, 0, len(graph.Selected))
	for name, artifact := range graph.Selected {
		entries = append(entries, BOM{Module: name, Version: artifact.Descriptor.Version, Source: artifact.URL})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Module < entries[j].Module })

	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", e.Module, e.Version, e.Source)
	}
	return buf.Bytes()
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
