package pipeline

import "github.com/00zhengfu00/modlink/internal/pool"

// excludeStage drops every pool entry whose path matches any glob in a
// comma-separated list, optionally restricted to one resource Kind.
// Backs both "exclude-resources" and "exclude-files" (spec.md §4.8),
// which differ only in which Kind they restrict to.
type excludeStage struct {
	globs       string
	restrictTo  pool.Kind
	hasRestrict bool
}

func (s excludeStage) Apply(in *pool.Pool) (*pool.Pool, error) {
	out := pool.New()
	for _, e := range in.Iter() {
		if s.hasRestrict && e.Kind != s.restrictTo {
			if err := out.Add(e); err != nil {
				return nil, err
			}
			continue
		}
		if matchAny(s.globs, e.Path) {
			continue
		}
		if err := out.Add(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newExcludeResources(cfg PluginConfig) (Stage, error) {
	return excludeStage{globs: cfg.Argument}, nil
}

func newExcludeFiles(cfg PluginConfig) (Stage, error) {
	return excludeStage{globs: cfg.Argument, restrictTo: pool.KindClassOrResource, hasRestrict: true}, nil
}
