package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tortlewortle/vodrecover/pkg/tvod"
)

var liveCmd = &cobra.Command{
	Use:   "live <username>",
	Short: "Get the m3u8 of a currently running stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		bar := a.progress()
		res, err := a.recoverer(bar).Live(cmd.Context(), args[0])
		finish(bar)
		if errors.Is(err, tvod.ErrNotLive) {
			if !a.opts.simple {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not live right now\n", args[0])
			}
			return nil
		}
		return report(cmd.OutOrStdout(), a.opts.simple, res, err)
	},
}
