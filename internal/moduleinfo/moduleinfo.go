// Package moduleinfo stands in for the spec's external "class file
// descriptor" collaborator: read_module_info(bytes) -> Descriptor.
//
// Real module-info.class parsing is bytecode-level class file parsing,
// explicitly out of scope for this core (spec.md §1). This package
// implements the same opaque contract — bytes in, Descriptor out —
// against a small, self-describing JSON encoding so the rest of the
// core (finder, resolver, pipeline, writer) can be built and tested
// against real Descriptor values without a class-file parser. A real
// deployment swaps Encode/Decode for an actual class-file reader; the
// interface boundary (Reader / Writer below) does not change.
package moduleinfo

import (
	"encoding/json"
	"fmt"

	"github.com/00zhengfu00/modlink/internal/descriptor"
)

// wireDependence and wireDescriptor mirror descriptor.Dependence /
// descriptor.Descriptor but with JSON-friendly field shapes (modifiers
// as strings, maps as slices of pairs) so the on-disk form is stable
// and human-inspectable, the way a disassembled module-info.class
// would be.
type wireDependence struct {
	Target    string   `json:"target"`
	Modifiers []string `json:"modifiers,omitempty"`
}

type wireExport struct {
	Package string   `json:"package"`
	To      []string `json:"to,omitempty"`
}

type wireDescriptor struct {
	Name string `json:"name,omitempty"`
	// NameRaw carries a module name as the raw bytes a non-standard
	// toolchain emitted (occasionally UTF-16LE) instead of a plain JSON
	// string; set only on legacy fixtures, never by Encode. Decode
	// normalizes it through descriptor.NormalizeName.
	NameRaw     []byte               `json:"name_raw,omitempty"`
	Version     string               `json:"version,omitempty"`
	Dependences []wireDependence     `json:"dependences,omitempty"`
	Exports     []wireExport         `json:"exports,omitempty"`
	Uses        []string             `json:"uses,omitempty"`
	Provides    map[string][]string  `json:"provides,omitempty"`
	MainClass   string               `json:"main_class,omitempty"`
	Conceals    []string             `json:"conceals,omitempty"`
}

// Reader is the opaque collaborator's function shape: bytes -> Descriptor.
type Reader func(data []byte) (*descriptor.Descriptor, error)

// Decode implements Reader against the JSON stand-in encoding.
func Decode(data []byte) (*descriptor.Descriptor, error) {
	var w wireDescriptor
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("moduleinfo: malformed descriptor: %w", err)
	}

	name := w.Name
	if name == "" && len(w.NameRaw) > 0 {
		normalized, err := descriptor.NormalizeName(w.NameRaw)
		if err != nil {
			return nil, fmt.Errorf("moduleinfo: %w", err)
		}
		name = normalized
	}
	if err := descriptor.Validate(name); err != nil {
		return nil, fmt.Errorf("moduleinfo: %w", err)
	}

	d := &descriptor.Descriptor{
		Name:      name,
		Version:   w.Version,
		Uses:      w.Uses,
		Provides:  w.Provides,
		MainClass: w.MainClass,
		Conceals:  w.Conceals,
	}
	for _, wd := range w.Dependences {
		var mod descriptor.Modifier
		for _, m := range wd.Modifiers {
			switch m {
			case "public":
				mod |= descriptor.ModPublic
			case "optional":
				mod |= descriptor.ModOptional
			case "synthetic":
				mod |= descriptor.ModSynthetic
			}
		}
		d.Dependences = append(d.Dependences, descriptor.Dependence{Target: wd.Target, Modifiers: mod})
	}
	for _, we := range w.Exports {
		exp := descriptor.Export{Package: we.Package}
		if len(we.To) > 0 {
			exp.To = make(map[string]struct{}, len(we.To))
			for _, t := range we.To {
				exp.To[t] = struct{}{}
			}
		}
		d.Exports = append(d.Exports, exp)
	}
	return d, nil
}

// Encode renders d back into the JSON stand-in wire format, the
// inverse of Decode used by test fixtures.
func Encode(d *descriptor.Descriptor) ([]byte, error) {
	w := wireDescriptor{
		Name:      d.Name,
		Version:   d.Version,
		Uses:      d.Uses,
		Provides:  d.Provides,
		MainClass: d.MainClass,
		Conceals:  d.Conceals,
	}
	for _, dep := range d.Dependences {
		wd := wireDependence{Target: dep.Target}
		if dep.Modifiers.Has(descriptor.ModPublic) {
			wd.Modifiers = append(wd.Modifiers, "public")
		}
		if dep.Modifiers.Has(descriptor.ModOptional) {
			wd.Modifiers = append(wd.Modifiers, "optional")
		}
		if dep.Modifiers.Has(descriptor.ModSynthetic) {
			wd.Modifiers = append(wd.Modifiers, "synthetic")
		}
		w.Dependences = append(w.Dependences, wd)
	}
	for _, exp := range d.Exports {
		we := wireExport{Package: exp.Package}
		for t := range exp.To {
			we.To = append(we.To, t)
		}
		w.Exports = append(w.Exports, we)
	}
	return json.Marshal(w)
}
