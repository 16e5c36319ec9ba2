package main

import (
	"os"
	"runtime/debug"
	"time"

	"github.com/crillab/cnftools/rlimit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	timeout int
	memout  int
	fileout int
	debug   bool

	logger   *logrus.Logger
	watchdog *rlimit.Watchdog
}

func main() {
	debug.SetGCPercent(300)
	o := &options{logger: logrus.New()}
	if err := newRootCmd(o).Execute(); err != nil {
		o.logger.Error(errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage returns the message reported for err, using the usual wording for exceeded limits.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, rlimit.ErrTimeLimitExceeded):
		return "Time Limit Exceeded"
	case rlimit.IsFileSizeLimit(err):
		return "File Size Limit Exceeded"
	default:
		return err.Error()
	}
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cnftools",
		Short:         "Analyzes and transforms CNF formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			o.logger.SetOutput(cmd.ErrOrStderr())
			if o.debug {
				o.logger.SetLevel(logrus.DebugLevel)
			}
			limits := rlimit.Limits{
				Timeout:    time.Duration(o.timeout) * time.Second,
				MemoryMB:   o.memout,
				FileSizeMB: o.fileout,
			}
			if err := limits.Apply(); err != nil {
				return err
			}
			logger := o.logger
			o.watchdog = rlimit.Watch(limits.Timeout, func() {
				logger.Error("Time Limit Exceeded")
				os.Exit(1)
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.watchdog != nil {
				o.watchdog.Stop()
			}
		},
	}

	cmd.PersistentFlags().IntVarP(&o.timeout, "timeout", "t", 0, "time limit in seconds (0 means no limit)")
	cmd.PersistentFlags().IntVarP(&o.memout, "memout", "m", 0, "memory limit in MB (0 means no limit)")
	cmd.PersistentFlags().IntVarP(&o.fileout, "fileout", "f", 0, "file size limit in MB (0 means no limit)")
	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "use debug log level")

	cmd.AddCommand(newIsohashCmd(o), newIDCmd(o), newNormalizeCmd(o))
	return cmd
}
