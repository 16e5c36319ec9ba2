package main

import (
	"io"
	"os"

	"github.com/crillab/cnftools/cnf"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newNormalizeCmd(o *options) *cobra.Command {
	var (
		output     string
		renameVars bool
	)
	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Writes a DIMACS file with sorted, deduplicated clauses and no tautology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.logger.Infof("c Normalizing %s", args[0])
			f, err := cnf.ParseFile(args[0])
			if err != nil {
				return err
			}
			if renameVars {
				f.NormalizeVariableNames()
			}
			return o.watchdog.Commit(func() error {
				if output == "-" {
					return f.WriteCNF(cmd.OutOrStdout())
				}
				return writeFormula(f, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "path to output file, gzip-compressed if it ends with .gz (default is stdout)")
	cmd.Flags().BoolVar(&renameVars, "rename-vars", false, "rename variables so that they are gapless, in order of first appearance")
	return cmd
}

// writeFormula writes f to the file at path. The file is removed if writing fails.
func writeFormula(f *cnf.Formula, path string) (err error) {
	var w io.WriteCloser
	if w, err = cnf.Create(path); err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
			err = errors.Wrapf(err, "could not write %q", path)
		}
	}()
	return f.WriteCNF(w)
}
