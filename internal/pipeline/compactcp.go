package pipeline

import "github.com/00zhengfu00/modlink/internal/pool"

// compactCPStage interns byte-identical resource contents so duplicate
// constant-pool-like payloads (the same compiled resource emitted under
// several module paths) share one backing array instead of each being
// carried separately through the rest of the pipeline, per spec.md
// §4.8's "compact-cp".
type compactCPStage struct{}

func (compactCPStage) Apply(in *pool.Pool) (*pool.Pool, error) {
	out := pool.New()
	seen := make(map[string][]byte)
	for _, e := range in.Iter() {
		if shared, ok := seen[string(e.Bytes)]; ok {
			e.Bytes = shared
		} else {
			seen[string(e.Bytes)] = e.Bytes
		}
		if err := out.Add(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newCompactCP(PluginConfig) (Stage, error) {
	return compactCPStage{}, nil
}
