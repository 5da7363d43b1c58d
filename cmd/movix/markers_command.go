package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jscyril/movix/internal/history"
	"github.com/jscyril/movix/internal/subtitle"
	"github.com/jscyril/movix/internal/ui/components"
)

func newMarkersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markers",
		Short: "Manage named positions in media files",
	}

	openStore := func() (*history.Store, error) {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		return history.Open(cfg.HistoryPath())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <file>",
		Short: "List the markers of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			markers, err := store.Markers(cmd.Context(), filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(markers) == 0 {
				fmt.Fprintln(out, "No markers")
				return nil
			}

			rows := make([][]string, 0, len(markers))
			for _, m := range markers {
				rows = append(rows, []string{m.ID, components.FormatDuration(m.Position), m.Title})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Time", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <file> <time> [title...]",
		Short: "Add a marker at a time such as 1:30 or 00:01:30.500",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			pos := subtitle.ParseTime(args[1])
			m, err := store.AddMarker(cmd.Context(), filepath.Clean(args[0]), pos, strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s at %s (%s)\n", m.Title, components.FormatDuration(m.Position), m.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Rename a marker",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if err := store.RenameMarker(cmd.Context(), args[0], title); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.RemoveMarker(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	})

	return cmd
}
