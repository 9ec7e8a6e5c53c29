package finder

import "github.com/00zhengfu00/modlink/internal/descriptor"

// Chain composes finders in priority order (e.g. upgrade ∘ system): the
// first finder to report a module name wins, and that is not a
// conflict — it is shadowing, per spec.md §4.6.
type Chain struct {
	layers []*Finder
}

// NewChain returns a Chain trying layers in the given order.
func NewChain(layers ...*Finder) *Chain {
	return &Chain{layers: layers}
}

// Find returns the first layer's artifact for name, or false if no
// layer has it.
func (c *Chain) Find(name string) (*descriptor.Artifact, bool, error) {
	for _, layer := range c.layers {
		a, ok, err := layer.Find(name)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return a, true, nil
		}
	}
	return nil, false, nil
}
