package rewrite

import (
	"github.com/wippyai/modcompat/errors"
)

// Registry holds the rewriters applied to a module, in registration order.
//
// A registry is built once per session and only read while rewriting, so it
// can be shared across goroutines after setup.
type Registry struct {
	rewriters []Rewriter
	index     map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry(rewriters ...Rewriter) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, rw := range rewriters {
		if err := r.Register(rw); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a rewriter. Noun phrases identify rewriters in reports and
// must be unique.
func (r *Registry) Register(rw Rewriter) error {
	if rw == nil {
		return errors.NilPointer(errors.PhaseConfig, "rewriter")
	}
	phrase := rw.NounPhrase()
	if phrase == "" {
		return errors.InvalidInput(errors.PhaseConfig, "rewriter without a noun phrase")
	}
	if _, exists := r.index[phrase]; exists {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(phrase).
			Detail("duplicate rewriter %q", phrase).
			Build()
	}
	r.index[phrase] = len(r.rewriters)
	r.rewriters = append(r.rewriters, rw)
	return nil
}

// Get returns the rewriter with the given noun phrase.
func (r *Registry) Get(nounPhrase string) (Rewriter, bool) {
	idx, ok := r.index[nounPhrase]
	if !ok {
		return nil, false
	}
	return r.rewriters[idx], true
}

// All returns the registered rewriters in registration order.
func (r *Registry) All() []Rewriter {
	return r.rewriters
}

// Len returns the number of registered rewriters.
func (r *Registry) Len() int {
	return len(r.rewriters)
}
