package isohash

import (
	"encoding/hex"
	"time"
)

// A Round holds the measurements of one refinement round.
type Round struct {
	Index   int           // Round number, starting at 1
	Classes int           // Nb of distinct colors after the round
	Elapsed time.Duration // Time spent in the round
	Digest  []byte        // Digest of the round colors, only set for composite digests
}

// A Result is the outcome of a hash computation.
type Result struct {
	Digest       []byte        // Final digest
	Iterations   int           // Nb of rounds run
	StabilizedAt int           // Round at which the partition stabilized, 0 if it did not
	Elapsed      time.Duration // Total computation time
	Rounds       []Round       // Per-round measurements, if collected
	Config       Config        // Configuration the result was computed with
}

// Stabilized is true iff refinement stopped before depth because the partition was stable.
func (r *Result) Stabilized() bool {
	return r.StabilizedAt > 0
}

// Hex returns the hexadecimal representation of the digest.
func (r *Result) Hex() string {
	return hex.EncodeToString(r.Digest)
}

// Classes returns the number of color classes after each measured round.
func (r *Result) Classes() []int {
	res := make([]int, len(r.Rounds))
	for i, round := range r.Rounds {
		res[i] = round.Classes
	}
	return res
}
