package main

import (
	"bufio"
	"fmt"

	"github.com/crillab/cnftools/cnf"
	"github.com/spf13/cobra"
)

func newIDCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "id FILE...",
		Short: "Computes the GBD identifier (MD5 of the clause text) of DIMACS files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashes := make([]string, len(args))
			for i, path := range args {
				o.logger.Infof("c Running: id %s", path)
				hash, err := cnf.GBDHashFile(path)
				if err != nil {
					return err
				}
				hashes[i] = hash
			}
			return o.watchdog.Commit(func() error {
				w := bufio.NewWriter(cmd.OutOrStdout())
				for _, hash := range hashes {
					fmt.Fprintln(w, hash)
				}
				return w.Flush()
			})
		},
	}
}
