package pipeline

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/logging"
	"github.com/00zhengfu00/modlink/internal/pool"
)

// categoryOrder is the fixed execution order of spec.md §4.8:
// filter -> transformer -> compressor -> sorter.
var categoryOrder = []Category{CategoryFilter, CategoryTransformer, CategoryCompressor, CategorySorter}

// Pipeline is an ordered list of built stages, ready to run end to end.
type Pipeline struct {
	stages []Stage
	log    *logrus.Entry
}

// Build resolves a Config into a runnable Pipeline: for each category,
// in fixed order, stages run sorted by numeric suffix (absent treated
// as 0) with declaration order breaking ties. A toggle-type plugin
// whose argument defaults to off is silently omitted, not an error.
func Build(cfg *Config, reg *Registry, log *logrus.Entry) (*Pipeline, error) {
	log = logging.Or(log, "pipeline")
	byCategory := make(map[Category][]StageDecl)
	for _, d := range cfg.Stages {
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}

	p := &Pipeline{log: log}
	for _, cat := range categoryOrder {
		decls := byCategory[cat]
		sort.SliceStable(decls, func(i, j int) bool {
			if decls[i].Suffix != decls[j].Suffix {
				return decls[i].Suffix < decls[j].Suffix
			}
			return decls[i].DeclOrder < decls[j].DeclOrder
		})
		for _, d := range decls {
			declaredCat, known := reg.Category(d.Plugin)
			if !known {
				return nil, linkerr.New(linkerr.KindPluginConfig, "unknown plugin "+d.Plugin)
			}
			if declaredCat != cat {
				return nil, linkerr.New(linkerr.KindPluginConfig,
					"plugin "+d.Plugin+" declared under the wrong category").WithModule(d.Plugin)
			}
			stage, err := reg.build(d.Plugin, cfg.PluginConfig(d.Plugin))
			if err != nil {
				return nil, err
			}
			if stage == nil {
				log.WithField("plugin", d.Plugin).Debug("plugin disabled, skipping")
				continue
			}
			p.stages = append(p.stages, stage)
		}
	}
	return p, nil
}

// Run threads in through every configured stage in order, returning the
// final pool. Each stage receives the previous stage's output pool,
// never mutating entries it did not itself construct (spec.md §4.8
// "Stage contract").
func (p *Pipeline) Run(in *pool.Pool) (*pool.Pool, error) {
	cur := in
	for _, s := range p.stages {
		out, err := s.Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = out
	}
	p.log.WithField("stages", len(p.stages)).Debug("pipeline run complete")
	return cur, nil
}

// Len returns the number of stages actually built (after toggle-off
// omission).
func (p *Pipeline) Len() int { return len(p.stages) }
