package isohash

import (
	"math"

	"github.com/crillab/cnftools/cnf"
	"github.com/pkg/errors"
)

// Formula is the read-only view of a CNF formula the hash is computed on.
// Clauses are expected to contain no variable twice; *cnf.Formula guarantees that.
type Formula interface {
	NbVars() int
	NbClauses() int
	Clause(i int) []cnf.Lit
}

// A graph is the incidence structure of a formula, stored as an arena:
// clause i has members members[start[i]:start[i+1]], each of them being a node index.
// In cross-reference mode, the node of a literal is the literal itself,
// so the complement of node n is n^1. Otherwise it is the variable.
type graph struct {
	nbNodes  int
	crossRef bool
	start    []int32
	members  []int32
	negative []bool  // Sign of each member
	nbNeg    []int32 // Nb of negative members of each clause
	nbEmpty  int     // Nb of empty clauses, which have no member to color
}

func (g *graph) nbClauses() int {
	return len(g.start) - 1
}

// buildGraph builds the incidence graph of f and checks its structural invariants.
func buildGraph(f Formula, crossRef bool) (*graph, error) {
	nbVars, nbClauses := f.NbVars(), f.NbClauses()
	if nbVars < 0 || nbClauses < 0 {
		return nil, errors.Wrapf(ErrMalformedInput, "negative size (%d vars, %d clauses)", nbVars, nbClauses)
	}
	nbNodes := nbVars
	if crossRef {
		nbNodes = 2 * nbVars
	}
	if int64(nbNodes) > math.MaxInt32 || int64(nbClauses) >= math.MaxInt32 {
		return nil, errors.Wrapf(ErrResourceExhausted, "%d vars and %d clauses do not fit in the arena", nbVars, nbClauses)
	}
	g := &graph{
		nbNodes:  nbNodes,
		crossRef: crossRef,
		start:    make([]int32, 1, nbClauses+1),
		nbNeg:    make([]int32, nbClauses),
	}
	if sized, ok := f.(interface{ NbLits() int }); ok && sized.NbLits() <= math.MaxInt32 {
		g.members = make([]int32, 0, sized.NbLits())
		g.negative = make([]bool, 0, sized.NbLits())
	}
	seen := make([]int32, nbVars) // Last clause (1-based) each var was seen in
	for i := 0; i < nbClauses; i++ {
		for _, lit := range f.Clause(i) {
			v := lit.Var()
			if lit < 0 || int(v) >= nbVars {
				return nil, errors.Wrapf(ErrMalformedInput, "clause #%d: literal %d is out of variables 1..%d", i+1, lit.Int(), nbVars)
			}
			if seen[v] == int32(i+1) {
				return nil, errors.Wrapf(ErrMalformedInput, "clause #%d: variable %d appears twice", i+1, v.Int())
			}
			seen[v] = int32(i + 1)
			node := int32(v)
			if crossRef {
				node = int32(lit)
			}
			g.members = append(g.members, node)
			g.negative = append(g.negative, !lit.IsPositive())
			if !lit.IsPositive() {
				g.nbNeg[i]++
			}
		}
		if len(g.members) > math.MaxInt32 {
			return nil, errors.Wrapf(ErrResourceExhausted, "more than %d literal occurrences", math.MaxInt32)
		}
		if int(g.start[i]) == len(g.members) {
			g.nbEmpty++
		}
		g.start = append(g.start, int32(len(g.members)))
	}
	return g, nil
}
