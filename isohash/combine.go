package isohash

import "encoding/binary"

// combine computes the final digest from the terminal colors.
// Colors are sorted first, so the digest does not depend on node numbering.
// With a composite digest, the digests of all rounds are hashed in round order instead.
// Empty clauses color no node: their number is folded into the digest, if any.
func (r *refiner) combine(cfg Config, res refinement) []byte {
	if !r.fresh {
		r.classes()
	}
	var digest []byte
	if cfg.CompositeDigest {
		h := r.m.newHash()
		for _, round := range res.rounds {
			_, _ = h.Write(round.Digest)
		}
		digest = h.Sum(nil)
	} else {
		digest = r.m.digest(r.sorted)
	}
	if r.g.nbEmpty == 0 {
		return digest
	}
	h := r.m.newHash()
	_, _ = h.Write(digest)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r.g.nbEmpty))
	_, _ = h.Write(buf[:])
	return h.Sum(nil)
}
