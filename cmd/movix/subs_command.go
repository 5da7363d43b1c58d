package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jscyril/movix/internal/subtitle"
)

func newSubsCommand() *cobra.Command {
	var at string
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "subs <file>",
		Short: "List the captions of a subtitle file, or show the one active at a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := subtitle.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if strings.TrimSpace(at) != "" {
				position, err := parsePosition(at)
				if err != nil {
					return err
				}
				caption, ok := track.At(position, delay)
				if !ok {
					fmt.Fprintf(out, "No caption at %s\n", subtitle.FormatTimestamp(position))
					return nil
				}
				fmt.Fprintf(out, "[%s --> %s]\n%s\n",
					subtitle.FormatTimestamp(caption.Start),
					subtitle.FormatTimestamp(caption.End),
					caption.Text)
				return nil
			}

			rows := make([][]string, 0, track.Len())
			for i, c := range track.Captions {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					subtitle.FormatTimestamp(c.Start),
					subtitle.FormatTimestamp(c.End),
					strings.ReplaceAll(c.Text, "\n", " / "),
				})
			}
			fmt.Fprintf(out, "%s: %d captions (%s)\n", track.Name, track.Len(), track.Format)
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Start", "End", "Text"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Show the caption active at this time (HH:MM:SS.mmm, MM:SS or 90s)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Subtitle delay applied before lookup, e.g. 250ms or -1s")
	return cmd
}

// parsePosition accepts a Go duration or a subtitle timestamp
func parsePosition(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if !strings.ContainsAny(value, "0123456789") {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return subtitle.ParseTime(value), nil
}
