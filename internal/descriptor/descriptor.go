// Package descriptor holds the module data model: module identity,
// dependence edges, descriptors, and the artifact wrapper a finder yields.
//
// Descriptor parsing of individual class files is an external
// collaborator (read_module_info(bytes) -> Descriptor in the spec); this
// package only defines the shapes that collaborator produces and consumes.
package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Modifier is a bit in a Dependence's modifier set.
type Modifier uint8

const (
	// ModPublic re-exports the dependence's readability to this module's
	// own requirers (requires public).
	ModPublic Modifier = 1 << iota
	// ModOptional is not an error if unresolved.
	ModOptional
	// ModSynthetic is compiler/tool-generated, never user written.
	ModSynthetic
)

func (m Modifier) Has(f Modifier) bool { return m&f != 0 }

func (m Modifier) String() string {
	var parts []string
	if m.Has(ModPublic) {
		parts = append(parts, "public")
	}
	if m.Has(ModOptional) {
		parts = append(parts, "optional")
	}
	if m.Has(ModSynthetic) {
		parts = append(parts, "synthetic")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Dependence is a single `requires` edge: a target module name plus
// modifiers.
type Dependence struct {
	Target    string
	Modifiers Modifier
}

// Export describes one exported package, optionally qualified to a set of
// target module names (`exports pkg to mod1, mod2`). An empty To set
// means unqualified.
type Export struct {
	Package string
	To      map[string]struct{}
}

// ModuleID identifies a module. Equality is by Name only; Version
// disambiguates artifact selection but never identity within a resolved
// graph (spec.md §3).
type ModuleID struct {
	Name    string
	Version string // opaque, may be empty
}

func (id ModuleID) String() string {
	if id.Version == "" {
		return id.Name
	}
	return fmt.Sprintf("%s@%s", id.Name, id.Version)
}

// ErrEmptyName is returned by Validate when a module name is empty.
var ErrEmptyName = errors.New("module name must not be empty")

// ErrInvalidSegment is returned by Validate when a dot-separated name
// segment is not a valid identifier.
var ErrInvalidSegment = errors.New("invalid module name segment")

// Validate checks the dot-separated identifier grammar for a module name.
func Validate(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return fmt.Errorf("%w: %q", ErrInvalidSegment, name)
		}
		for i, r := range seg {
			isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
			isDigit := r >= '0' && r <= '9'
			if i == 0 && isDigit {
				return fmt.Errorf("%w: %q starts with a digit", ErrInvalidSegment, seg)
			}
			if !isLetter && !isDigit {
				return fmt.Errorf("%w: %q", ErrInvalidSegment, seg)
			}
		}
	}
	return nil
}

// Descriptor is the parsed contents of a module's metadata declaration.
type Descriptor struct {
	Name        string
	Version     string
	Dependences []Dependence
	Exports     []Export
	Uses        []string
	Provides    map[string][]string
	MainClass   string
	Conceals    []string
}

// ID returns the ModuleID for this descriptor.
func (d *Descriptor) ID() ModuleID { return ModuleID{Name: d.Name, Version: d.Version} }

// RequiresNames returns the target module names of every non-optional
// dependence (used by the resolver's worklist).
func (d *Descriptor) RequiresNames() []string {
	out := make([]string, 0, len(d.Dependences))
	for _, dep := range d.Dependences {
		if !dep.Modifiers.Has(ModOptional) {
			out = append(out, dep.Target)
		}
	}
	return out
}

// OptionalNames returns the target module names of every optional
// dependence.
func (d *Descriptor) OptionalNames() []string {
	var out []string
	for _, dep := range d.Dependences {
		if dep.Modifiers.Has(ModOptional) {
			out = append(out, dep.Target)
		}
	}
	return out
}

// PublicTargets returns the target names of every `requires public`
// dependence, used to seed the readability transitive closure.
func (d *Descriptor) PublicTargets() []string {
	var out []string
	for _, dep := range d.Dependences {
		if dep.Modifiers.Has(ModPublic) {
			out = append(out, dep.Target)
		}
	}
	return out
}

// decodeUTF16LE mirrors helper.go's defensive UTF-16 decode path: some
// legacy descriptors carry a module name encoded as UTF-16LE rather than
// UTF-8. Returns the input unchanged if it is not a BOM-less UTF-16LE
// string (no NUL byte in the first few runes).
func decodeUTF16LE(raw []byte) (string, error) {
	if len(raw) < 2 || len(raw)%2 != 0 {
		return string(raw), nil
	}
	hasNulHighByte := false
	for i := 1; i < len(raw) && i < 16; i += 2 {
		if raw[i] == 0 {
			hasNulHighByte = true
			break
		}
	}
	if !hasNulHighByte {
		return string(raw), nil
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode utf-16 module name: %w", err)
	}
	return string(out), nil
}

// NormalizeName decodes a raw name field that may be UTF-16LE (rare, seen
// in descriptors produced by non-standard toolchains) into UTF-8.
func NormalizeName(raw []byte) (string, error) {
	return decodeUTF16LE(raw)
}
