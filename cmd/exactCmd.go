package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse the broadcast id %q: %w", s, err)
	}
	return id, nil
}

var exactCmd = &cobra.Command{
	Use:   "exact <username> <id> <stamp>",
	Short: "Combine the username, broadcast id and start time into a URL and check whether the VOD is available",
	Long: `Combine the username, broadcast id and start time into a URL and check whether the VOD is available.

The timestamp is either a unix timestamp or a date like "2020-11-12 20:02:13",
"2020-11-12 20:02:13 UTC", "12-11-2020 20:02" or RFC 3339.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		bar := a.progress()
		res, err := a.recoverer(bar).Exact(cmd.Context(), args[0], id, args[2])
		finish(bar)
		return report(cmd.OutOrStdout(), a.opts.simple, res, err)
	},
}
