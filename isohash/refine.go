package isohash

import (
	"hash"
	"slices"
	"time"
)

// A refiner runs the color refinement on a graph.
// Buffers are allocated once and reused by every round.
type refiner struct {
	g      *graph
	m      *mixer
	cur    []uint64 // Colors of the current round
	acc    []uint64 // Sum of clause signatures, per node
	out    []uint64 // Next colors, in cross-reference mode
	sorted []uint64 // Sorted copy of cur, to count classes and compute digests
	clause []uint64 // Sorted member colors of a clause, in sort mode
	fresh  bool     // Whether sorted holds the current colors
	seq    hash.Hash
	sum    []byte
}

func newRefiner(g *graph, m *mixer) *refiner {
	r := &refiner{
		g:      g,
		m:      m,
		cur:    make([]uint64, g.nbNodes),
		acc:    make([]uint64, g.nbNodes),
		sorted: make([]uint64, g.nbNodes),
	}
	for i := range r.cur {
		r.cur[i] = m.uniform
	}
	if g.crossRef {
		r.out = make([]uint64, g.nbNodes)
	}
	if m.sorted {
		r.seq = m.newHash()
		r.sum = make([]byte, 0, r.seq.Size())
	}
	return r
}

// member returns the color member j brings to its clause.
func (r *refiner) member(j int32) uint64 {
	c := r.cur[r.g.members[j]]
	if !r.g.crossRef && r.g.negative[j] {
		return r.m.neg(c)
	}
	return c
}

// add folds the signature of a clause into the accumulator of member j.
func (r *refiner) add(j int32, sig uint64) {
	if !r.g.crossRef && r.g.negative[j] {
		sig = r.m.neg(sig)
	}
	n := r.g.members[j]
	r.acc[n] = r.m.add(r.acc[n], sig)
}

// round computes the colors of the next round.
// If first is true, the colors of round 1 are derived from the shape of clauses only,
// since all nodes share the uniform color at round 0.
func (r *refiner) round(first bool) {
	r.fresh = false
	for i := range r.acc {
		r.acc[i] = 0
	}
	g := r.g
	for c := 0; c < g.nbClauses(); c++ {
		lo, hi := g.start[c], g.start[c+1]
		switch {
		case first && r.m.sorted:
			r.sortShape(c, lo, hi)
		case first:
			r.sumShape(c, lo, hi)
		case r.m.sorted:
			r.sortClause(lo, hi)
		default:
			r.sumClause(lo, hi)
		}
	}
	m := r.m
	for n, c := range r.cur {
		r.acc[n] = m.pair(c, r.acc[n])
	}
	if g.crossRef {
		for n := range r.out {
			r.out[n] = m.pair(r.acc[n], r.acc[n^1])
		}
		r.cur, r.out = r.out, r.cur
	} else {
		r.cur, r.acc = r.acc, r.cur
	}
}

func (r *refiner) sumClause(lo, hi int32) {
	var sum uint64
	for j := lo; j < hi; j++ {
		sum = r.m.add(sum, r.member(j))
	}
	for j := lo; j < hi; j++ {
		r.add(j, r.m.clauseSig(r.m.sub(sum, r.member(j))))
	}
}

func (r *refiner) sortClause(lo, hi int32) {
	r.clause = r.clause[:0]
	for j := lo; j < hi; j++ {
		r.clause = append(r.clause, r.member(j))
	}
	slices.Sort(r.clause)
	for j := lo; j < hi; j++ {
		skip, _ := slices.BinarySearch(r.clause, r.member(j))
		r.add(j, r.m.sum64(r.seq, r.clause, skip, r.sum))
	}
}

// shapeColors returns the colors of positive and negative members at round 0.
func (r *refiner) shapeColors() (pos, neg uint64) {
	pos = r.m.uniform
	if r.g.crossRef {
		return pos, pos
	}
	return pos, r.m.neg(pos)
}

func (r *refiner) sumShape(c int, lo, hi int32) {
	m := r.m
	pos, neg := r.shapeColors()
	nbNeg := uint64(0)
	if !r.g.crossRef {
		nbNeg = uint64(r.g.nbNeg[c])
	}
	sum := m.add(m.mul(uint64(hi-lo)-nbNeg, pos), m.mul(nbNeg, neg))
	posSig, negSig := m.clauseSig(m.sub(sum, pos)), m.clauseSig(m.sub(sum, neg))
	for j := lo; j < hi; j++ {
		if !r.g.crossRef && r.g.negative[j] {
			r.add(j, negSig)
		} else {
			r.add(j, posSig)
		}
	}
}

func (r *refiner) sortShape(c int, lo, hi int32) {
	pos, neg := r.shapeColors()
	nbNeg := int32(0)
	if !r.g.crossRef {
		nbNeg = r.g.nbNeg[c]
	}
	r.clause = r.clause[:0]
	for j := int32(0); j < hi-lo; j++ {
		if j < nbNeg {
			r.clause = append(r.clause, neg)
		} else {
			r.clause = append(r.clause, pos)
		}
	}
	slices.Sort(r.clause)
	var posSig, negSig uint64
	if nbNeg < hi-lo {
		skip, _ := slices.BinarySearch(r.clause, pos)
		posSig = r.m.sum64(r.seq, r.clause, skip, r.sum)
	}
	if nbNeg > 0 {
		skip, _ := slices.BinarySearch(r.clause, neg)
		negSig = r.m.sum64(r.seq, r.clause, skip, r.sum)
	}
	for j := lo; j < hi; j++ {
		if !r.g.crossRef && r.g.negative[j] {
			r.add(j, negSig)
		} else {
			r.add(j, posSig)
		}
	}
}

// classes sorts a copy of the current colors and returns the number of distinct colors.
func (r *refiner) classes() int {
	copy(r.sorted, r.cur)
	slices.Sort(r.sorted)
	r.fresh = true
	nb := 0
	for i, c := range r.sorted {
		if i == 0 || c != r.sorted[i-1] {
			nb++
		}
	}
	return nb
}

// refinement is the outcome of run.
type refinement struct {
	iterations   int
	stabilizedAt int
	rounds       []Round
	digest       []byte
}

// run refines colors for at most cfg.Depth rounds and computes the digest of the terminal colors.
// onRound, if not nil, is called with the colors of each round.
func (r *refiner) run(cfg Config, onRound func(k int, colors []uint64)) refinement {
	var res refinement
	prevClasses := 1 // Round 0 is uniform
	if r.g.nbNodes == 0 {
		prevClasses = 0
	}
	depth, progress := int(cfg.Depth), int(cfg.ProgressIter)
	for k := 1; k <= depth; k++ {
		start := time.Now()
		r.round(k == 1 && cfg.OptimizeFirstIteration)
		res.iterations = k
		if onRound != nil {
			onRound(k, r.cur)
		}
		// Classes are counted only when measured or needed by a stabilization check.
		if !cfg.CollectMeasurements && k+1 < progress {
			continue
		}
		classes := r.classes()
		if cfg.CollectMeasurements {
			round := Round{Index: k, Classes: classes, Elapsed: time.Since(start)}
			if cfg.CompositeDigest {
				round.Digest = r.m.digest(r.sorted)
			}
			res.rounds = append(res.rounds, round)
		}
		if k >= progress && classes == prevClasses {
			res.stabilizedAt = k
			break
		}
		prevClasses = classes
	}
	res.digest = r.combine(cfg, res)
	return res
}
