// Package pipeline implements the staged, configurable transformation
// graph applied to the resource pool before it reaches the image
// writer: filter -> transformer -> compressor -> sorter, per spec.md
// §4.8.
//
// A plugin is a tagged value (name + category + behavior), not a node
// in an inheritance tree, per spec.md §9 "Polymorphism over plugin
// kinds": configure(options) -> stage, stage.apply(pool) -> pool.
package pipeline

import (
	"fmt"

	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/pool"
)

// Category is one of the four ordered stage groups.
type Category int

const (
	CategoryFilter Category = iota
	CategoryTransformer
	CategoryCompressor
	CategorySorter
)

func (c Category) String() string {
	switch c {
	case CategoryFilter:
		return "filter"
	case CategoryTransformer:
		return "transformer"
	case CategoryCompressor:
		return "compressor"
	case CategorySorter:
		return "sorter"
	default:
		return "unknown"
	}
}

// ArgumentKind distinguishes plugins whose "argument" key is a tri-state
// on/off switch from plugins whose argument carries the configuration
// value itself (a glob list, a prefix list, ...).
type ArgumentKind int

const (
	// ArgumentToggle plugins default to off when no argument is given
	// (spec.md §4.8: "A missing argument for an on/off plugin defaults
	// to off").
	ArgumentToggle ArgumentKind = iota
	// ArgumentValue plugins use their argument as configuration data;
	// they run whenever declared, regardless of on/off wording.
	ArgumentValue
)

// Stage is one configured pipeline step. Apply receives an immutable
// input pool and returns a fresh output pool (spec.md §4.8 "Stage
// contract").
type Stage interface {
	Apply(in *pool.Pool) (*pool.Pool, error)
}

// Factory builds a Stage from a resolved PluginConfig.
type Factory func(cfg PluginConfig) (Stage, error)

// PluginConfig is what a Factory receives: the plugin's own argument
// value (if any) and its free-form options.
type PluginConfig struct {
	Name     string
	Argument string
	HasArg   bool
	Options  map[string]string
}

// On reports whether a toggle-type plugin's argument is "on". Per
// spec.md §4.8, a missing argument defaults to off.
func (c PluginConfig) On() bool {
	return c.HasArg && c.Argument == "on"
}

type registryEntry struct {
	category Category
	kind     ArgumentKind
	factory  Factory
}

// Registry maps a plugin name to its fixed category, argument kind, and
// constructor. The six concrete plugins of spec.md §4.8 are registered
// by registerBuiltins (builtins.go), which NewRegistry calls.
type Registry struct {
	entries map[string]registryEntry
}

// NewRegistry returns a Registry pre-populated with the six built-in
// plugins.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]registryEntry)}
	registerBuiltins(r)
	return r
}

func (r *Registry) register(name string, cat Category, kind ArgumentKind, factory Factory) {
	r.entries[name] = registryEntry{category: cat, kind: kind, factory: factory}
}

// Category returns the fixed category for a registered plugin name.
func (r *Registry) Category(name string) (Category, bool) {
	e, ok := r.entries[name]
	return e.category, ok
}

func (r *Registry) build(name string, cfg PluginConfig) (Stage, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, linkerr.New(linkerr.KindPluginConfig, fmt.Sprintf("unknown plugin %q", name))
	}
	if e.kind == ArgumentToggle && !cfg.On() {
		return nil, nil // disabled: not an error, simply not built
	}
	stage, err := e.factory(cfg)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindPluginConfig, err)
	}
	return stage, nil
}
