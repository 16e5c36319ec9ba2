package isohash

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"file", "hash", "iterations", "stabilized_at", "runtime_us",
	"depth", "cross_reference", "rehash_clauses", "optimize_first_iteration", "progress_iter",
	"collect_measurements", "sort_for_clause_hash", "hash_primitive", "prime_ring_modulus",
	"composite_digest", "classes",
}

// WriteCSVHeader writes the header line matching the rows written by WriteCSV.
func WriteCSVHeader(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes r as a CSV row, along with the configuration it was computed with.
// Per-round class counts are joined with ';'.
func (r *Result) WriteCSV(w io.Writer, file string) error {
	cfg := r.Config
	stabilized := ""
	if r.Stabilized() {
		stabilized = strconv.Itoa(r.StabilizedAt)
	}
	classes := make([]string, len(r.Rounds))
	for i, round := range r.Rounds {
		classes[i] = strconv.Itoa(round.Classes)
	}
	row := []string{
		file,
		r.Hex(),
		strconv.Itoa(r.Iterations),
		stabilized,
		strconv.FormatInt(r.Elapsed.Microseconds(), 10),
		strconv.FormatUint(uint64(cfg.Depth), 10),
		strconv.FormatBool(cfg.CrossReference),
		strconv.FormatBool(cfg.RehashClauses),
		strconv.FormatBool(cfg.OptimizeFirstIteration),
		strconv.FormatUint(uint64(cfg.ProgressIter), 10),
		strconv.FormatBool(cfg.CollectMeasurements),
		strconv.FormatBool(cfg.SortForClauseHash),
		string(cfg.Hash),
		strconv.FormatUint(uint64(cfg.PrimeRingModulus), 10),
		strconv.FormatBool(cfg.CompositeDigest),
		strings.Join(classes, ";"),
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
