package isohash

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/crillab/cnftools/cnf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formula(t *testing.T, clauses ...[]int) *cnf.Formula {
	t.Helper()
	f, err := cnf.ParseSlice(clauses)
	require.NoError(t, err)
	return f
}

func compute(t *testing.T, f Formula, cfg Config) *Result {
	t.Helper()
	res, err := Compute(f, cfg)
	require.NoError(t, err)
	return res
}

// configs returns a set of configurations covering all refinement variants.
func configs() map[string]Config {
	res := map[string]Config{}
	def := DefaultConfig()
	res["default"] = def
	cfg := def
	cfg.CrossReference = false
	res["merged"] = cfg
	cfg = def
	cfg.SortForClauseHash = true
	res["sort"] = cfg
	cfg.CrossReference = false
	res["sort merged"] = cfg
	cfg = def
	cfg.RehashClauses = false
	res["no rehash"] = cfg
	cfg = def
	cfg.OptimizeFirstIteration = false
	res["no opt first"] = cfg
	cfg = def
	cfg.Hash = HashStrong
	res["md5"] = cfg
	cfg = def
	cfg.PrimeRingModulus = 1000003
	res["prime ring"] = cfg
	cfg.CrossReference = false
	cfg.RehashClauses = false
	res["prime ring merged no rehash"] = cfg
	cfg = def
	cfg.CompositeDigest = true
	res["composite"] = cfg
	return res
}

// randomFormula returns a formula whose variables 1..NbVars() are all used.
func randomFormula(rng *rand.Rand) *cnf.Formula {
	nbVars := 5 + rng.IntN(15)
	nbClauses := 5 + rng.IntN(30)
	clauses := make([][]int, nbClauses)
	for i := range clauses {
		size := 1 + rng.IntN(4)
		for _, v := range rng.Perm(nbVars)[:min(size, nbVars)] {
			lit := v + 1
			if rng.IntN(2) == 0 {
				lit = -lit
			}
			clauses[i] = append(clauses[i], lit)
		}
	}
	f, err := cnf.ParseSlice(clauses)
	if err != nil {
		panic(err)
	}
	f.NormalizeVariableNames()
	return f
}

// permuted returns a copy of f with variables renamed, and clauses and literals shuffled.
func permuted(rng *rand.Rand, f *cnf.Formula) *cnf.Formula {
	perm := rng.Perm(f.NbVars())
	clauses := make([][]int, f.NbClauses())
	for i, clause := range f.Clauses() {
		for _, lit := range clause {
			v := perm[lit.Var()] + 1
			if !lit.IsPositive() {
				v = -v
			}
			clauses[i] = append(clauses[i], v)
		}
		rng.Shuffle(len(clauses[i]), func(a, b int) { clauses[i][a], clauses[i][b] = clauses[i][b], clauses[i][a] })
	}
	rng.Shuffle(len(clauses), func(a, b int) { clauses[a], clauses[b] = clauses[b], clauses[a] })
	res, err := cnf.ParseSlice(clauses)
	if err != nil {
		panic(err)
	}
	return res
}

func TestExample(t *testing.T) {
	f1 := formula(t, []int{1, 2}, []int{-1, 3})
	f2 := formula(t, []int{3, -1}, []int{2, 1})
	f3 := formula(t, []int{1, 2}, []int{-1, -2})
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			h1, h2, h3 := compute(t, f1, cfg), compute(t, f2, cfg), compute(t, f3, cfg)
			assert.Equal(t, h1.Hex(), h2.Hex())
			assert.NotEqual(t, h1.Hex(), h3.Hex())
		})
	}
}

func TestIsomorphismInvariance(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 30; i++ {
		f := randomFormula(rng)
		g := permuted(rng, f)
		for name, cfg := range configs() {
			h1, h2 := compute(t, f, cfg), compute(t, g, cfg)
			require.Equal(t, h1.Hex(), h2.Hex(), "config %s, formula #%d:\n%v\n%v", name, i, f.Clauses(), g.Clauses())
			assert.Equal(t, h1.Iterations, h2.Iterations)
			assert.Equal(t, h1.StabilizedAt, h2.StabilizedAt)
			assert.Equal(t, h1.Classes(), h2.Classes())
		}
	}
}

func TestDeterminism(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	f := randomFormula(rng)
	for name, cfg := range configs() {
		h, err := New(cfg)
		require.NoError(t, err, name)
		res1, err := h.Compute(f)
		require.NoError(t, err, name)
		res2, err := h.Compute(f)
		require.NoError(t, err, name)
		assert.Equal(t, res1.Digest, res2.Digest, name)
	}
}

func TestMonotoneRefinement(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, sorted := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.SortForClauseHash = sorted
		cfg.Depth = 20
		cfg.ProgressIter = 21 // Never stop early
		for i := 0; i < 20; i++ {
			res := compute(t, randomFormula(rng), cfg)
			require.Len(t, res.Rounds, 20)
			classes := res.Classes()
			for k := 1; k < len(classes); k++ {
				assert.GreaterOrEqual(t, classes[k], classes[k-1], "sorted=%v, formula #%d, classes %v", sorted, i, classes)
			}
		}
	}
}

func TestEarlyExit(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for name, cfg := range configs() {
		for i := 0; i < 10; i++ {
			f := randomFormula(rng)
			res := compute(t, f, cfg)
			// Class counts are bounded by the number of nodes, so the partition must stabilize.
			require.True(t, res.Stabilized(), name)
			assert.Equal(t, res.StabilizedAt, res.Iterations, name)
			cfg2 := cfg
			cfg2.Depth = uint(res.StabilizedAt)
			res2 := compute(t, f, cfg2)
			assert.Equal(t, res.Hex(), res2.Hex(), name)
			assert.Equal(t, res.Iterations, res2.Iterations, name)
		}
	}
}

func TestDepthBelowProgressIter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Depth = 3
	cfg.ProgressIter = 10
	res := compute(t, formula(t, []int{1, 2}, []int{-1, -2}), cfg)
	assert.Equal(t, 3, res.Iterations)
	assert.False(t, res.Stabilized())
	assert.Len(t, res.Rounds, 3)
}

func TestProgressIterDelaysCheck(t *testing.T) {
	f := formula(t, []int{1, 2}, []int{-1, -2})
	res := compute(t, f, DefaultConfig())
	assert.Equal(t, 1, res.StabilizedAt)
	cfg := DefaultConfig()
	cfg.ProgressIter = 4
	cfg.CollectMeasurements = false
	res = compute(t, f, cfg)
	assert.Equal(t, 4, res.StabilizedAt)
	assert.Empty(t, res.Rounds)
}

func TestOptimizeFirstIteration(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	for name, cfg := range configs() {
		for i := 0; i < 10; i++ {
			f := randomFormula(rng)
			cfg.OptimizeFirstIteration = true
			h1 := compute(t, f, cfg)
			cfg.OptimizeFirstIteration = false
			h2 := compute(t, f, cfg)
			assert.Equal(t, h1.Hex(), h2.Hex(), name)
		}
	}
}

func TestSensitivity(t *testing.T) {
	pairs := []struct {
		name string
		f, g [][]int
	}{
		{"polarity", [][]int{{1, 2}, {2, 3}}, [][]int{{1, 2}, {-2, 3}}},
		{"binary polarities", [][]int{{1, 2, 3}, {-1, -2}}, [][]int{{1, 2, 3}, {-1, 2}}},
		{"clause lengths", [][]int{{1, 2, 3}, {4}, {-1, -4}}, [][]int{{1, 2}, {3, 4}, {-1, -4}}},
		{"cycle vs triangles", [][]int{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 1}}, [][]int{{1, 2}, {2, 3}, {3, 1}, {4, 5}, {5, 6}, {6, 4}}},
	}
	for _, pair := range pairs {
		f, g := formula(t, pair.f...), formula(t, pair.g...)
		require.Equal(t, f.NbVars(), g.NbVars(), pair.name)
		require.Equal(t, f.NbClauses(), g.NbClauses(), pair.name)
		res1, res2 := compute(t, f, DefaultConfig()), compute(t, g, DefaultConfig())
		if pair.name == "cycle vs triangles" {
			// A 6-cycle and two triangles cannot be told apart by color refinement.
			assert.Equal(t, res1.Hex(), res2.Hex(), pair.name)
			continue
		}
		assert.NotEqual(t, res1.Hex(), res2.Hex(), pair.name)
	}
}

func TestDistinctRandomFormulas(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	formulas := map[string]bool{}
	hashes := map[string]bool{}
	for i := 0; i < 200; i++ {
		f := randomFormula(rng)
		formulas[fmt.Sprint(f.Clauses())] = true
		hashes[compute(t, f, DefaultConfig()).Hex()] = true
	}
	assert.Equal(t, len(formulas), len(hashes))
}

func TestEmptyFormula(t *testing.T) {
	empty := cnf.NewFormula()
	onlyEmptyClause := formula(t, []int{})
	res1 := compute(t, empty, DefaultConfig())
	res2 := compute(t, onlyEmptyClause, DefaultConfig())
	assert.NotEqual(t, res1.Digest, res2.Digest)
	assert.Len(t, res1.Digest, 8)
	assert.Len(t, res2.Digest, 8)
	assert.Equal(t, 1, res1.StabilizedAt)
	cfg := DefaultConfig()
	cfg.Hash = HashStrong
	assert.Len(t, compute(t, empty, cfg).Digest, 16)
}

func TestEmptyClauses(t *testing.T) {
	clauses := [][]int{{1, 2}, {-1, 3}, {2, 3, 4}}
	f := formula(t, clauses...)
	withEmpty := formula(t, append(slices.Clone(clauses), []int{})...)
	withTwoEmpty := formula(t, []int{}, []int{1, 2}, []int{-1, 3}, []int{}, []int{2, 3, 4})
	withEmptyReordered := formula(t, []int{2, 3, 4}, []int{}, []int{-1, 3}, []int{1, 2})
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			base := compute(t, f, cfg)
			one := compute(t, withEmpty, cfg)
			two := compute(t, withTwoEmpty, cfg)
			assert.NotEqual(t, base.Digest, one.Digest)
			assert.NotEqual(t, one.Digest, two.Digest)
			assert.Equal(t, one.Digest, compute(t, withEmptyReordered, cfg).Digest)
			assert.Len(t, one.Digest, len(base.Digest))
			assert.Equal(t, base.Iterations, one.Iterations)
		})
	}
}

func TestCompositeDigest(t *testing.T) {
	f := formula(t, []int{1, 2}, []int{-1, 3}, []int{2, 3, 4})
	plain := compute(t, f, DefaultConfig())
	cfg := DefaultConfig()
	cfg.CompositeDigest = true
	composite := compute(t, f, cfg)
	assert.NotEqual(t, plain.Hex(), composite.Hex())
	require.Len(t, composite.Rounds, composite.Iterations)
	for _, round := range composite.Rounds {
		assert.Len(t, round.Digest, 8)
	}
	assert.Equal(t, plain.Rounds[len(plain.Rounds)-1].Classes, composite.Rounds[len(composite.Rounds)-1].Classes)
}

func TestPrimeRingModulus(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	const p = 65521
	for name, base := range configs() {
		base.PrimeRingModulus = p
		f := randomFormula(rng)
		g, err := buildGraph(f, base.CrossReference)
		require.NoError(t, err)
		rounds := 0
		newRefiner(g, newMixer(base)).run(base, func(k int, colors []uint64) {
			rounds++
			for _, c := range colors {
				require.Less(t, c, uint64(p), "%s, round %d", name, k)
			}
		})
		assert.Positive(t, rounds)
	}
}

func TestPrimeRingModulusBaseline(t *testing.T) {
	f := formula(t, []int{1, 2}, []int{-1, 3}, []int{2, 3, 4})
	cfg := DefaultConfig()
	cfg.PrimeRingModulus = 0
	assert.Equal(t, compute(t, f, DefaultConfig()).Hex(), compute(t, f, cfg).Hex())
	cfg.PrimeRingModulus = 2147483647
	assert.NotEqual(t, compute(t, f, DefaultConfig()).Hex(), compute(t, f, cfg).Hex())
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		nbVars  int
		clauses [][]cnf.Lit
	}{
		{"variable 0", 2, [][]cnf.Lit{{cnf.IntToLit(1), cnf.IntToLit(0)}}},
		{"variable out of range", 2, [][]cnf.Lit{{cnf.IntToLit(1)}, {cnf.IntToLit(-3)}}},
		{"duplicate literal", 2, [][]cnf.Lit{{cnf.IntToLit(1), cnf.IntToLit(1)}}},
		{"tautology", 2, [][]cnf.Lit{{cnf.IntToLit(2), cnf.IntToLit(-2)}}},
		{"negative size", -1, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, crossRef := range []bool{true, false} {
				cfg := DefaultConfig()
				cfg.CrossReference = crossRef
				res, err := Compute(sliceFormula{test.nbVars, test.clauses}, cfg)
				assert.ErrorIs(t, err, ErrMalformedInput)
				assert.Nil(t, res)
			}
		})
	}
}

type sliceFormula struct {
	nbVars  int
	clauses [][]cnf.Lit
}

func (f sliceFormula) NbVars() int            { return f.nbVars }
func (f sliceFormula) NbClauses() int         { return len(f.clauses) }
func (f sliceFormula) Clause(i int) []cnf.Lit { return f.clauses[i] }
