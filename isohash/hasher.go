package isohash

import (
	"time"

	"github.com/pkg/errors"
)

// A Hasher computes structural hashes with a given, validated configuration.
// It holds no mutable state and can be used concurrently.
type Hasher struct {
	cfg Config
	mix *mixer
}

// New validates cfg and returns a Hasher using it.
// The returned error, if any, wraps ErrConfiguration.
func New(cfg Config) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{cfg: cfg, mix: newMixer(cfg)}, nil
}

// Config returns the configuration of h.
func (h *Hasher) Config() Config {
	return h.cfg
}

// Compute computes the structural hash of f.
// Nothing is returned but the error if f is malformed (ErrMalformedInput)
// or too large (ErrResourceExhausted).
func (h *Hasher) Compute(f Formula) (*Result, error) {
	start := time.Now()
	g, err := buildGraph(f, h.cfg.CrossReference)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build incidence graph")
	}
	ref := newRefiner(g, h.mix).run(h.cfg, nil)
	return &Result{
		Digest:       ref.digest,
		Iterations:   ref.iterations,
		StabilizedAt: ref.stabilizedAt,
		Elapsed:      time.Since(start),
		Rounds:       ref.rounds,
		Config:       h.cfg,
	}, nil
}

// Compute computes the structural hash of f with the configuration cfg.
func Compute(f Formula, cfg Config) (*Result, error) {
	h, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return h.Compute(f)
}
