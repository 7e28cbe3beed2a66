package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tortlewortle/vodrecover/pkg/playlist"
)

var fixCmd = &cobra.Command{
	Use:   "fix <url>",
	Short: "Convert an unplayable unmuted VOD playlist into a playable muted one",
	Long: `Convert an unplayable unmuted VOD playlist into a playable muted one.

Only twitch.tv and cloudfront.net URLs are supported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		slow, err := cmd.Flags().GetBool("slow")
		if err != nil {
			return err
		}
		bar := a.progress()
		path, err := a.fixer(bar).Fix(cmd.Context(), playlist.Request{
			URL:    args[0],
			Output: cmd.Flag("output").Value.String(),
			Verify: slow,
		})
		finish(bar)
		if err != nil {
			return fmt.Errorf("failed to fix playlist: %w", err)
		}
		if a.opts.simple {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote the fixed playlist to %s\n", path)
		}
		return nil
	},
}

func init() {
	fixCmd.Flags().StringP("output", "o", "", "output path (default is muted_<vod>.m3u8 in the current folder)")
	fixCmd.Flags().Bool("slow", false, "check every segment over the network (slow, but more reliable)")
}
