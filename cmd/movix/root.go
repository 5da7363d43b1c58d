package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "movix [files...]",
		Short:         "Terminal media player with subtitles and a 10-band equalizer",
		Long:          "Play audio files in the terminal. Subtitle files given next to media are shown as captions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayer(cmd, ctx, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSubsCommand())
	rootCmd.AddCommand(newEqCommand(ctx))
	rootCmd.AddCommand(newRecentCommand(ctx))
	rootCmd.AddCommand(newMarkersCommand(ctx))
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newScanCommand(ctx))

	return rootCmd
}
