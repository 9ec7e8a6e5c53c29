package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/00zhengfu00/modlink/internal/linkerr"
)

// StageDecl names one pipeline stage slot: a category, which plugin
// fills it, its ordering suffix, and its position in the file (used to
// break suffix ties), per spec.md §4.8's "numeric suffix, absent
// treated as 0, ties broken by declaration order".
type StageDecl struct {
	Category  Category
	Plugin    string
	Suffix    int
	DeclOrder int
}

// Config is the parsed form of a flat key=value plugin-configuration
// file (spec.md §6). It separates stage declarations (which plugin runs
// in which category slot) from each plugin's own options.
type Config struct {
	Stages  []StageDecl
	options map[string]map[string]string // plugin name -> option -> value
	args    map[string]string            // plugin name -> argument value
	hasArg  map[string]bool
}

func newConfig() *Config {
	return &Config{
		options: make(map[string]map[string]string),
		args:    make(map[string]string),
		hasArg:  make(map[string]bool),
	}
}

// PluginConfig assembles the PluginConfig a Factory receives for name.
func (c *Config) PluginConfig(name string) PluginConfig {
	return PluginConfig{
		Name:     name,
		Argument: c.args[name],
		HasArg:   c.hasArg[name],
		Options:  c.options[name],
	}
}

var categoryKeys = map[string]Category{
	"resources.filter":      CategoryFilter,
	"resources.transformer": CategoryTransformer,
	"resources.compressor":  CategoryCompressor,
	"resources.sorter":      CategorySorter,
}

// ParseConfig reads a flat key=value plugin configuration, per spec.md
// §6's grammar:
//
//	resources.filter[.N]      = <plugin-name>
//	resources.transformer[.N] = <plugin-name>
//	resources.compressor[.N]  = <plugin-name>
//	resources.sorter          = <plugin-name>
//	<plugin-name>             = <argument>       (shorthand: also a stage
//	                                               declaration via the
//	                                               plugin's registered
//	                                               fixed category)
//	<plugin-name>.argument    = <value>
//	<plugin-name>.<option>    = <value>
//
// Blank lines and lines starting with '#' are ignored, mirroring the
// teacher's key=value version-resource parsing idiom (grounded on
// version.go's scanner-based field parser).
func ParseConfig(r io.Reader, reg *Registry) (*Config, error) {
	cfg := newConfig()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	declOrder := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, linkerr.New(linkerr.KindPluginConfig,
				fmt.Sprintf("line %d: missing '=' in %q", lineNo, line))
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if key == "" {
			return nil, linkerr.New(linkerr.KindPluginConfig,
				fmt.Sprintf("line %d: empty key", lineNo))
		}

		if cat, base, suffix, ok := splitCategoryKey(key); ok {
			cfg.Stages = append(cfg.Stages, StageDecl{
				Category:  cat,
				Plugin:    value,
				Suffix:    suffix,
				DeclOrder: declOrder,
			})
			declOrder++
			_ = base
			continue
		}

		plugin, sub, isSub := strings.Cut(key, ".")
		if !isSub {
			// Shorthand: "<plugin-name> = <value>" declares both the
			// stage slot (category looked up from the registry) and the
			// plugin's primary argument in one line.
			cat, known := reg.Category(key)
			if !known {
				return nil, linkerr.New(linkerr.KindPluginConfig,
					fmt.Sprintf("line %d: unknown plugin %q", lineNo, key))
			}
			cfg.Stages = append(cfg.Stages, StageDecl{
				Category:  cat,
				Plugin:    key,
				Suffix:    0,
				DeclOrder: declOrder,
			})
			declOrder++
			cfg.args[plugin] = value
			cfg.hasArg[plugin] = true
			continue
		}

		if sub == "argument" {
			cfg.args[plugin] = value
			cfg.hasArg[plugin] = true
			continue
		}
		if cfg.options[plugin] == nil {
			cfg.options[plugin] = make(map[string]string)
		}
		cfg.options[plugin][sub] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err)
	}
	return cfg, nil
}

// splitCategoryKey recognizes "resources.<category>[.N]" keys.
func splitCategoryKey(key string) (cat Category, base string, suffix int, ok bool) {
	for prefix, c := range categoryKeys {
		if key == prefix {
			return c, prefix, 0, true
		}
		if strings.HasPrefix(key, prefix+".") {
			rest := key[len(prefix)+1:]
			n, err := strconv.Atoi(rest)
			if err != nil {
				continue
			}
			return c, prefix, n, true
		}
	}
	return 0, "", 0, false
}
