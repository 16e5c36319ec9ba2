/*
Package cnf gives access to CNF formulas, as read from DIMACS files.

A formula is read from a DIMACS CNF stream (io.Reader). If the io.Reader produces the following content:

	p cnf 3 3
	1 2 0
	-1 3 3 0
	-2 2 0

the programmer can create the Formula by doing:

	f, err := cnf.ParseCNF(r)

Clauses are normalized while read: literals are sorted and deduplicated,
so the second clause is stored as [-1 3], and tautological clauses such
as the third one are dropped.
The number of variables of a formula is the highest variable referenced by one of its clauses.

Files can also be read directly with ParseFile, which decompresses .gz, .bz2, .xz and .lzma files
on the fly.

A formula can be written back as DIMACS with WriteCNF, and the GBD identifier of a DIMACS
stream, i.e the MD5 digest of its clauses as text, is computed by GBDHash.
*/
package cnf
