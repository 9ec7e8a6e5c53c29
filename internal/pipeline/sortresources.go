package pipeline

import (
	"sort"
	"strings"

	"github.com/00zhengfu00/modlink/internal/pool"
)

// sortResourcesStage reorders the pool by a priority list of path
// prefixes (spec.md §4.8 "sort-resources"): entries matching an earlier
// prefix sort before entries matching a later one, ties and entries
// matching no prefix keep their relative (insertion) order.
type sortResourcesStage struct {
	prefixes []string
}

func (s sortResourcesStage) priority(path string) int {
	for i, p := range s.prefixes {
		if strings.HasPrefix(path, p) {
			return i
		}
	}
	return len(s.prefixes)
}

func (s sortResourcesStage) Apply(in *pool.Pool) (*pool.Pool, error) {
	entries := in.Iter()
	sort.SliceStable(entries, func(i, j int) bool {
		return s.priority(entries[i].Path) < s.priority(entries[j].Path)
	})
	out := pool.New()
	for _, e := range entries {
		if err := out.Add(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newSortResources(cfg PluginConfig) (Stage, error) {
	var prefixes []string
	for _, p := range strings.Split(cfg.Argument, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return sortResourcesStage{prefixes: prefixes}, nil
}
