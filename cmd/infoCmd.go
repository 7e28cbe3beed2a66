package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tortlewortle/vodrecover/pkg/playlist"
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Get vod playlist info",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		s, err := playlist.Inspect(cmd.Context(), a.client, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "VOD: %s\n", s.Source.Dir)
		fmt.Fprintf(out, "Quality: %s\n", s.Source.Quality)
		fmt.Fprintf(out, "Segments: %d\n", s.Segments)
		fmt.Fprintf(out, "Unmuted segments: %d\n", s.Unmuted)
		fmt.Fprintf(out, "Duration: %s\n", s.Duration)
		if !s.Closed {
			fmt.Fprintln(out, "The playlist is still open (stream in progress or incomplete)")
		}
		if s.Unmuted > 0 {
			fmt.Fprintf(out, "- run fix %s to make it playable\n", args[0])
		}
		return nil
	},
}
