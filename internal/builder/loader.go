// Package builder implements the top-level driver of spec.md §4.9: it
// runs the resolver, partitions the selected modules into loaders,
// drives the plugin pipeline per partition, and emits the on-disk image
// tree of spec.md §6.
package builder

import "strings"

// Loader is one of the three fixed runtime loader partitions, always
// emitted in this order.
type Loader string

const (
	LoaderBoot Loader = "boot"
	LoaderExt  Loader = "ext"
	LoaderApp  Loader = "app"
)

// LoaderOrder is the fixed emission order of spec.md §4.9 step 3.
var LoaderOrder = []Loader{LoaderBoot, LoaderExt, LoaderApp}

// LoaderTable classifies module names into loaders: an explicit
// per-module override table, then a boot-prefix fallback list, then
// application as the default (spec.md's Open Question decision on
// loader partitioning, SPEC_FULL.md §D.3).
type LoaderTable struct {
	ByModule     map[string]Loader
	BootPrefixes []string
}

// DefaultLoaderTable returns the built-in table: conventional
// "java."/"jdk." name prefixes classify as boot, nothing is pre-wired
// to ext (mirroring a modern JDK's near-empty extension loader), and
// every other module defaults to app.
func DefaultLoaderTable() *LoaderTable {
	return &LoaderTable{
		ByModule:     make(map[string]Loader),
		BootPrefixes: []string{"java.", "jdk."},
	}
}

// Classify returns the loader for a module name.
func (t *LoaderTable) Classify(name string) Loader {
	if l, ok := t.ByModule[name]; ok {
		return l
	}
	for _, prefix := range t.BootPrefixes {
		if strings.HasPrefix(name, prefix) {
			return LoaderBoot
		}
	}
	return LoaderApp
}

// Override records an explicit module -> loader assignment, as parsed
// from a "loaders.<module>=<boot|ext|app>" configuration key.
func (t *LoaderTable) Override(module string, loader Loader) {
	t.ByModule[module] = loader
}

// ParseLoaderOverride validates a raw loader value string from
// configuration, returning the corresponding Loader.
func ParseLoaderOverride(value string) (Loader, bool) {
	switch Loader(value) {
	case LoaderBoot, LoaderExt, LoaderApp:
		return Loader(value), true
	default:
		return "", false
	}
}
