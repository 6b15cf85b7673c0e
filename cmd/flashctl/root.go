// cmd/flashctl/root.go
package main

import (
	"errors"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "flashctl",
		Short:         "Inspect and exercise an IS25LP080D serial NOR flash",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml (default: simulated part)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: human or json")

	root.AddCommand(
		newReadCmd(opts),
		newProgramCmd(opts),
		newEraseCmd(opts),
		newStatusCmd(opts),
		newAttrsCmd(),
		newSelftestCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

// withEnv builds the storage stack, runs fn and tears the stack down.
func withEnv(opts *rootOptions, fn func(e *env) error) (err error) {
	e, err := newEnv(*opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(e)
}
