package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vodrecover",
	Short: "Recover deleted twitch vods.",
	Long: `Tool for recovering deleted twitch vods.

Rebuilds the storage URL of a broadcast from the streamer's username, the
broadcast id and its start time, checks which CDNs still serve it and repairs
playlists with muted segments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(withApp(cmd.Context(), a))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.IntP("threads", "t", 1000, "amount of requests in flight")
	flags.BoolP("simple", "s", false, "provide minimal output")
	flags.BoolP("verbose", "v", false, "show more info")
	flags.StringP("cdnfile", "c", "", "import more CDN urls via a config file (TXT/JSON/YAML/TOML)")
	flags.BoolP("progressbar", "p", false, "show a progress bar")
	flags.Int("rate", 0, "max requests per second (0 is unlimited)")
	flags.Duration("timeout", defaultTimeout, "timeout of a single request")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd.AddCommand(exactCmd)
	rootCmd.AddCommand(bruteforceCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(clipCmd)
	rootCmd.AddCommand(clipforceCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(infoCmd)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
