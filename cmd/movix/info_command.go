package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jscyril/movix/internal/library"
	"github.com/jscyril/movix/internal/ui/components"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show file, tag and stream details of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := library.ReadMediaInfo(args[0])
			if err != nil {
				return err
			}

			rows := [][]string{
				{"File", info.Name},
				{"Size", info.HumanSize()},
				{"Modified", info.Age()},
				{"Container", info.Container},
			}
			add := func(label, value string) {
				if value != "" && value != "0" {
					rows = append(rows, []string{label, value})
				}
			}
			if info.Duration > 0 {
				add("Duration", components.FormatDuration(info.Duration))
			}
			if info.SampleRate > 0 {
				add("Sample rate", fmt.Sprintf("%d Hz", info.SampleRate))
			}
			add("Tags", info.TagFormat)
			add("Title", info.Title)
			add("Artist", info.Artist)
			add("Album", info.Album)
			add("Genre", info.Genre)
			add("Year", strconv.Itoa(info.Year))
			if info.HasCover {
				add("Cover art", "yes")
			}
			for _, sub := range info.Subtitles {
				add("Subtitles", filepath.Base(sub))
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
