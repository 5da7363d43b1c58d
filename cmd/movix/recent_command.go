package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jscyril/movix/internal/history"
	"github.com/jscyril/movix/internal/ui/components"
)

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool
	var remove string

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently played files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case clearAll:
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Recent files cleared")
				return nil
			case remove != "":
				if err := store.Remove(cmd.Context(), remove); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s\n", remove)
				return nil
			}

			files, err := store.Recent(cmd.Context())
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(out, "No recent files")
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{
					f.ID,
					f.Name,
					components.FormatDuration(f.Duration),
					humanize.Time(f.LastPlayed),
					f.Path,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Duration", "Played", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Forget all recent files")
	cmd.Flags().StringVar(&remove, "remove", "", "Forget one recent file by ID")
	return cmd
}
