package cnf

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// A Formula is a list of clauses & a nb of vars.
// Clauses are stored sorted, without duplicate literals, and tautologies are never stored.
type Formula struct {
	nbVars       int     // Highest variable seen
	nbLits       int     // Total nb of literals, over all clauses
	maxClauseLen int     // Length of the longest clause
	clauses      [][]Lit // List of clauses, possibly empty
}

// NewFormula returns an empty formula.
func NewFormula() *Formula {
	return &Formula{}
}

// ParseSlice parses a slice of slice of DIMACS lits and returns the equivalent formula.
// It returns an error if a literal is 0.
func ParseSlice(cnf [][]int) (*Formula, error) {
	f := NewFormula()
	for i, line := range cnf {
		lits := make([]Lit, len(line))
		for j, val := range line {
			if val == 0 {
				return nil, errors.Errorf("null literal in clause #%d", i+1)
			}
			lits[j] = IntToLit(val)
		}
		f.AddClause(lits)
	}
	return f, nil
}

// NbVars returns the number of variables, i.e the highest variable referenced by a clause.
func (f *Formula) NbVars() int {
	return f.nbVars
}

// NbClauses returns the number of clauses.
func (f *Formula) NbClauses() int {
	return len(f.clauses)
}

// NbLits returns the total number of literals over all clauses.
func (f *Formula) NbLits() int {
	return f.nbLits
}

// MaxClauseLen returns the length of the longest clause.
func (f *Formula) MaxClauseLen() int {
	return f.maxClauseLen
}

// Clause returns the ith clause. It must not be modified.
func (f *Formula) Clause(i int) []Lit {
	return f.clauses[i]
}

// Clauses returns all the clauses of f. They must not be modified.
func (f *Formula) Clauses() [][]Lit {
	return f.clauses
}

// AddClause adds the given clause to the formula.
// Duplicate literals are removed and tautological clauses are ignored.
// It returns false iff the clause was a tautology.
// The given slice is owned by the formula after the call.
func (f *Formula) AddClause(lits []Lit) bool {
	if len(lits) > 0 {
		sort.Slice(lits, func(i, j int) bool { return lits[i] < lits[j] })
		i := 0
		for j := 1; j < len(lits); j++ {
			if lits[j] == lits[i] {
				continue
			}
			if lits[j].Var() == lits[i].Var() {
				return false
			}
			i++
			lits[i] = lits[j]
		}
		lits = lits[:i+1]
		if len(lits) > f.maxClauseLen {
			f.maxClauseLen = len(lits)
		}
		if v := int(lits[len(lits)-1].Var()) + 1; v > f.nbVars {
			f.nbVars = v
		}
		f.nbLits += len(lits)
	}
	f.clauses = append(f.clauses, lits)
	return true
}

// NormalizeVariableNames renames variables so that they are gapless,
// in order of first appearance.
func (f *Formula) NormalizeVariableNames() {
	name := make([]Var, f.nbVars)
	for i := range name {
		name[i] = -1
	}
	var next Var
	for _, clause := range f.clauses {
		for i, lit := range clause {
			v := lit.Var()
			if name[v] == -1 {
				name[v] = next
				next++
			}
			clause[i] = name[v].SignedLit(!lit.IsPositive())
		}
		sort.Slice(clause, func(i, j int) bool { return clause[i] < clause[j] })
	}
	f.nbVars = int(next)
}

// WriteCNF writes a DIMACS CNF representation of the formula on w.
func (f *Formula) WriteCNF(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", f.nbVars, len(f.clauses)); err != nil {
		return err
	}
	for _, clause := range f.clauses {
		for _, lit := range clause {
			if _, err := fmt.Fprintf(bw, "%d ", lit.Int()); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("0\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
