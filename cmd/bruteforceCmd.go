package cmd

import (
	"github.com/spf13/cobra"
)

var bruteforceCmd = &cobra.Command{
	Use:   "bruteforce <username> <id> <from> <to>",
	Short: "Go over a range of timestamps looking for a working URL and check whether the VOD is available",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		bar := a.progress()
		res, err := a.recoverer(bar).Bruteforce(cmd.Context(), args[0], id, args[2], args[3])
		finish(bar)
		return report(cmd.OutOrStdout(), a.opts.simple, res, err)
	},
}
