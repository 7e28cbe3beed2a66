package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tortlewortle/vodrecover/pkg/tvod"
)

var clipCmd = &cobra.Command{
	Use:   "clip <url|slug>",
	Short: "Find the broadcast a clip was cut from",
	Long: `Find the broadcast a clip was cut from.

Both twitch.tv/<username>/clip/<slug> and clips.twitch.tv/<slug> are supported,
as is a bare slug. With --start the broadcast's start time is used to look the
VOD up right away, and with --start and --end every second in between is tried.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		slug, err := tvod.ExtractSlug(args[0])
		if err != nil {
			return err
		}
		login, id, err := tvod.NewGQL(a.client).ClipBroadcast(cmd.Context(), slug)
		if err != nil {
			return err
		}

		start := cmd.Flag("start").Value.String()
		if start == "" {
			out := cmd.OutOrStdout()
			if a.opts.simple {
				fmt.Fprintf(out, "%s %d\n", login, id)
				return nil
			}
			fmt.Fprintf(out, "Broadcaster: %s\nBroadcast ID: %d\n", login, id)
			fmt.Fprintf(out, "Start time: see %s, then run exact with it\n", tvod.TrackerURL(login, id))
			return nil
		}

		bar := a.progress()
		res, err := a.recoverer(bar).FromTracker(cmd.Context(), trackerData(login, id, start, cmd.Flag("end").Value.String()))
		finish(bar)
		return report(cmd.OutOrStdout(), a.opts.simple, res, err)
	},
}

// trackerData picks bruteforce mode when an end time is known.
func trackerData(login string, id int64, start, end string) tvod.TrackerData {
	data := tvod.TrackerData{
		Username:    login,
		BroadcastID: id,
		Start:       start,
		End:         end,
		Mode:        tvod.ModeExact,
	}
	if end != "" {
		data.Mode = tvod.ModeBruteforce
	}
	return data
}

func init() {
	clipCmd.Flags().String("start", "", "start time of the broadcast, checks the VOD when set")
	clipCmd.Flags().String("end", "", "latest possible start time, bruteforces from --start to here")
}
