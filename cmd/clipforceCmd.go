package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tortlewortle/vodrecover/pkg/tvod"
)

var clipforceCmd = &cobra.Command{
	Use:   "clipforce <id> <start> <end>",
	Short: "Go over a range of offsets looking for clips in a VOD",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		start, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("couldn't parse the start offset: %w", err)
		}
		end, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("couldn't parse the end offset: %w", err)
		}

		bar := a.progress()
		clips, _, err := a.recoverer(bar).Clips(cmd.Context(), id, start, end)
		finish(bar)
		if errors.Is(err, tvod.ErrNotFound) {
			if !a.opts.simple {
				fmt.Fprintln(cmd.OutOrStdout(), "Couldn't find anything :(")
			}
			return nil
		}
		if err != nil {
			return err
		}
		printURLs(cmd.OutOrStdout(), a.opts.simple, "Got some clips! Here are the URLs:", clips)
		return nil
	},
}
