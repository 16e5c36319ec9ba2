/*
Package isohash computes structural hashes of CNF formulas that do not depend on
variable names, nor on the order of clauses and literals.

The hash is computed by color refinement, in the manner of the Weisfeiler-Leman
algorithm, on the incidence structure of the formula.
Each literal (or each variable, if cross-referencing is disabled) is a node whose color
is refined round after round: for each clause it belongs to, a node gets a signature
computed from the colors of the other members of the clause, and its new color mixes
its previous color with the sum of those signatures.
In cross-reference mode, the color of a literal is also mixed with the color of its negation.
No color is ever derived from a variable number, so two formulas that only differ by
a renaming of their variables and the order of their clauses get the same hash.
The converse is not true: the hash is a fingerprint, not a proof of isomorphism.

Refinement stops after a given depth, or as soon as a round does not split any color class.
The final digest is the hash of the sorted terminal colors.
Empty clauses have no member to color; their number is folded into the digest,
so adding an empty clause to a formula changes its hash.

# Computing a hash

Given a formula, as read by package cnf:

	f, err := cnf.ParseFile("problem.cnf")
	if err != nil {
	    // ...
	}
	res, err := isohash.Compute(f, isohash.DefaultConfig())
	if err != nil {
	    // ...
	}
	fmt.Println(res.Hex())

A Hasher can also be built once with New and used for several formulas, concurrently
if needed: all the state of a computation is local to the call to Compute.

# Configuration

Config describes how colors are computed. Clause signatures are either sums of colors
(the default), rehashed or not, or hashes of sorted colors (SortForClauseHash).
The hash primitive is either xxHash (the default) or MD5.
If PrimeRingModulus is set, all colors are reduced modulo that prime.
Configurations are validated by New; invalid ones give an error wrapping ErrConfiguration.

# Results

A Result holds the digest, the number of rounds run, the round at which the
color partition stabilized, if it did, and, if CollectMeasurements is set,
the number of color classes after each round. It can be written as a CSV row with WriteCSV.
*/
package isohash
