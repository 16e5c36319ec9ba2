package cnf

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// readInt reads an int from r.
// The int can be negated, and must be followed by a space or by EOF.
func readInt(r *bufio.Reader) (res int, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, errors.Wrap(err, "cannot read int")
	}
	neg := 1
	if b == '-' {
		neg = -1
		if b, err = r.ReadByte(); err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
	}
	if !isDigit(b) {
		return 0, errors.Errorf("cannot read int: %q is not a digit", b)
	}
	for {
		res = 10*res + int(b-'0')
		if res > math.MaxInt32/2 {
			return 0, errors.Errorf("literal %d too large", res)
		}
		b, err = r.ReadByte()
		if err == io.EOF {
			return res * neg, nil
		}
		if err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
		if isSpace(b) {
			return res * neg, r.UnreadByte()
		}
		if !isDigit(b) {
			return 0, errors.Errorf("cannot read int: %q is not a digit", b)
		}
	}
}

func skipLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF {
		return line, nil
	}
	return line, err
}

func parseHeader(line string) (nbVars, nbClauses int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return 0, 0, errors.Errorf("invalid syntax %q in header", line)
	}
	nbVars, err = strconv.Atoi(fields[2])
	if err != nil || nbVars < 0 {
		return 0, 0, errors.Errorf("nbvars not an int : %q", fields[2])
	}
	nbClauses, err = strconv.Atoi(fields[3])
	if err != nil || nbClauses < 0 {
		return 0, 0, errors.Errorf("nbClauses not an int : %q", fields[3])
	}
	return nbVars, nbClauses, nil
}

// scanDimacs reads a DIMACS stream and calls onLit for every int found in clause lines,
// 0 included. onHeader is called when the problem line is met.
// Comments ('c' lines) are ignored wherever they appear, and a line starting with '%'
// ends the clause section.
func scanDimacs(f io.Reader, onHeader func(nbVars, nbClauses int), onLit func(val int) error) error {
	r := bufio.NewReader(f)
	line := 1
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		switch {
		case b == '\n':
			line++
		case isSpace(b):
		case b == 'c':
			if _, err := skipLine(r); err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			line++
		case b == 'p':
			header, err := skipLine(r)
			if err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			nbVars, nbClauses, err := parseHeader("p" + header)
			if err != nil {
				return errors.Wrapf(err, "cannot parse CNF header at line %d", line)
			}
			if onHeader != nil {
				onHeader(nbVars, nbClauses)
			}
			line++
		case b == '%':
			return nil
		case b == '-' || isDigit(b):
			if err := r.UnreadByte(); err != nil {
				return err
			}
			val, err := readInt(r)
			if err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			if err := onLit(val); err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
		default:
			return errors.Errorf("line %d: unexpected character %q", line, b)
		}
	}
}

// maxClausesHint bounds the capacity reserved from the clause count of the header,
// which is not trusted.
const maxClausesHint = 1 << 16

// ParseCNF parses a DIMACS CNF stream and returns the corresponding Formula.
// The problem line is optional and only used as a capacity hint: the number of
// variables of the formula is the highest variable referenced by a clause.
func ParseCNF(f io.Reader) (*Formula, error) {
	form := NewFormula()
	lits := make([]Lit, 0, 3) // Make room for some lits to improve performance
	onHeader := func(_, nbClauses int) {
		if form.clauses == nil {
			form.clauses = make([][]Lit, 0, min(nbClauses, maxClausesHint))
		}
	}
	err := scanDimacs(f, onHeader, func(val int) error {
		if val != 0 {
			lits = append(lits, IntToLit(val))
			return nil
		}
		form.AddClause(lits)
		lits = make([]Lit, 0, 3)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse CNF")
	}
	if len(lits) != 0 {
		return nil, errors.New("cannot parse CNF: unfinished clause while EOF found")
	}
	return form, nil
}
