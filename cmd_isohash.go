package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/crillab/cnftools/cnf"
	"github.com/crillab/cnftools/isohash"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type isohashOptions struct {
	depth          uint
	noCrossRef     bool
	noRehash       bool
	noOptFirst     bool
	progressIter   uint
	noMeasurements bool
	sortForClause  bool
	useMD5         bool
	primeRingMod   uint32
	composite      bool
	configPath     string
	csvPath        string
	jobs           int
}

func newIsohashCmd(o *options) *cobra.Command {
	ho := isohashOptions{}
	def := isohash.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "isohash2 FILE...",
		Aliases: []string{"wlhash"},
		Short:   "Computes the Weisfeiler-Leman structural hash of CNF files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ho.config(cmd)
			if err != nil {
				return err
			}
			hasher, err := isohash.New(cfg)
			if err != nil {
				return err
			}
			results, err := hashFiles(cmd.Context(), o, hasher, args, ho.jobs)
			if err != nil {
				return err
			}
			return o.watchdog.Commit(func() error {
				if ho.csvPath != "" {
					return appendCSV(ho.csvPath, args, results)
				}
				w := bufio.NewWriter(cmd.OutOrStdout())
				for _, res := range results {
					fmt.Fprintln(w, res.Hex())
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().UintVar(&ho.depth, "depth", def.Depth, "maximum number of refinement rounds")
	cmd.Flags().BoolVar(&ho.noCrossRef, "no-cross-ref", false, "disable cross-referencing of positive/negative literals")
	cmd.Flags().BoolVar(&ho.noRehash, "no-rehash-clauses", false, "disable re-hashing of the sum of literals of a clause")
	cmd.Flags().BoolVar(&ho.noOptFirst, "no-opt-first", false, "disable optimized first iteration")
	cmd.Flags().UintVar(&ho.progressIter, "progress-iter", def.ProgressIter, "iteration from which early stabilization is checked")
	cmd.Flags().BoolVar(&ho.noMeasurements, "no-measurements", false, "disable collecting measurements on individual iterations")
	cmd.Flags().BoolVar(&ho.sortForClause, "sort-for-clause-hash", false, "sort literal colors instead of summing")
	cmd.Flags().BoolVar(&ho.useMD5, "use-md5", false, "use MD5 instead of xxHash for hashing")
	cmd.Flags().Uint32Var(&ho.primeRingMod, "prime-ring-mod", 0, "if > 0, do all calculations modulo this prime")
	cmd.Flags().BoolVar(&ho.composite, "composite", false, "fold the digests of all iterations into the final digest")
	cmd.Flags().StringVar(&ho.configPath, "config", "", "YAML configuration file, overridden by flags")
	cmd.Flags().StringVar(&ho.csvPath, "csv-output", "", "append results to the given CSV file")
	cmd.Flags().IntVarP(&ho.jobs, "jobs", "j", 1, "number of files hashed in parallel")

	return cmd
}

// config builds the configuration from the configuration file, if any,
// and from the flags explicitly set on the command line.
func (ho *isohashOptions) config(cmd *cobra.Command) (isohash.Config, error) {
	cfg := isohash.DefaultConfig()
	if ho.configPath != "" {
		var err error
		if cfg, err = isohash.LoadConfig(ho.configPath); err != nil {
			return cfg, err
		}
	}
	set := cmd.Flags().Changed
	if set("depth") {
		cfg.Depth = ho.depth
	}
	if set("no-cross-ref") {
		cfg.CrossReference = !ho.noCrossRef
	}
	if set("no-rehash-clauses") {
		cfg.RehashClauses = !ho.noRehash
	}
	if set("no-opt-first") {
		cfg.OptimizeFirstIteration = !ho.noOptFirst
	}
	if set("progress-iter") {
		cfg.ProgressIter = ho.progressIter
	}
	if set("no-measurements") {
		cfg.CollectMeasurements = !ho.noMeasurements
	}
	if set("sort-for-clause-hash") {
		cfg.SortForClauseHash = ho.sortForClause
	}
	if set("use-md5") {
		cfg.Hash = isohash.HashFast
		if ho.useMD5 {
			cfg.Hash = isohash.HashStrong
		}
	}
	if set("prime-ring-mod") {
		cfg.PrimeRingModulus = ho.primeRingMod
	}
	if set("composite") {
		cfg.CompositeDigest = ho.composite
	}
	return cfg, nil
}

// hashFiles hashes all files, at most jobs at a time.
// Results are in the order of paths; if a single file fails, no result is returned.
func hashFiles(ctx context.Context, o *options, hasher *isohash.Hasher, paths []string, jobs int) ([]*isohash.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs < 1 {
		jobs = 1
	}
	results := make([]*isohash.Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if ext := cnf.Ext(path); ext != ".cnf" {
				return errors.Errorf("format %s of %q not supported by isohash2", ext, path)
			}
			o.logger.Infof("c Running: isohash2 %s", path)
			f, err := cnf.ParseFile(path)
			if err != nil {
				return err
			}
			res, err := hasher.Compute(f)
			if err != nil {
				return errors.Wrapf(err, "could not hash %q", path)
			}
			for _, round := range res.Rounds {
				o.logger.Debugf("c %s: round %d, %d classes, %v", path, round.Index, round.Classes, round.Elapsed)
			}
			if res.Stabilized() {
				o.logger.Debugf("c %s: stabilized at round %d", path, res.StabilizedAt)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// appendCSV appends one row per result to the CSV file at path,
// writing the header first if the file is new or empty.
func appendCSV(path string, files []string, results []*isohash.Result) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "could not open %q", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "could not close %q", path)
		}
	}()
	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "could not stat %q", path)
	}
	if err := appendRows(f, info.Size(), files, results); err != nil {
		return errors.Wrapf(err, "could not write to %q", path)
	}
	return nil
}

// A truncater is a file rows are appended to.
type truncater interface {
	io.Writer
	Truncate(size int64) error
}

// appendRows appends the CSV rows of results to f, whose current size is size.
// If writing fails, f is truncated back to size so that no partial row is left.
func appendRows(f truncater, size int64, files []string, results []*isohash.Result) error {
	w := bufio.NewWriter(f)
	err := writeCSV(w, size == 0, files, results)
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		if terr := f.Truncate(size); terr != nil {
			return errors.Wrapf(err, "partial row left (truncate failed: %v)", terr)
		}
		return err
	}
	return nil
}

func writeCSV(w io.Writer, header bool, files []string, results []*isohash.Result) error {
	if header {
		if err := isohash.WriteCSVHeader(w); err != nil {
			return err
		}
	}
	for i, res := range results {
		if err := res.WriteCSV(w, files[i]); err != nil {
			return err
		}
	}
	return nil
}
