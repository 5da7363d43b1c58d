package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jscyril/movix/internal/equalizer"
	"github.com/jscyril/movix/internal/prefs"
)

func newEqCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eq",
		Short: "Inspect and change the equalizer",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "presets",
		Short: "List the built-in presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := []string{"Name", "Label", "Preamp"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight}
			for _, f := range equalizer.Frequencies {
				headers = append(headers, frequencyHeader(f))
				aligns = append(aligns, alignRight)
			}

			var rows [][]string
			for _, p := range equalizer.Presets() {
				row := []string{p.Name, p.Label, formatGain(p.Preamp)}
				for _, gain := range p.Bands {
					row = append(row, formatGain(gain))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved equalizer settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := loadPrefs(ctx)
			if err != nil {
				return err
			}
			printState(cmd, p.Equalizer)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <preset|on|off|reset>",
		Short: "Apply a preset, switch the equalizer on or off, or reset it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, p, err := loadPrefs(ctx)
			if err != nil {
				return err
			}

			state := p.Equalizer
			switch args[0] {
			case "on":
				state.Enabled = true
			case "off":
				state.Enabled = false
			case "reset":
				state.Reset()
			default:
				if !state.SetPreset(args[0]) {
					return fmt.Errorf("unknown preset %q; see `movix eq presets`", args[0])
				}
			}

			p.Equalizer = state
			if err := store.Save(p); err != nil {
				return err
			}
			printState(cmd, state)
			return nil
		},
	})

	return cmd
}

func loadPrefs(ctx *commandContext) (*prefs.Store, prefs.Prefs, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, prefs.Prefs{}, err
	}
	store := prefs.NewStore(cfg.PrefsPath())
	p, err := store.Load()
	if err != nil {
		return nil, prefs.Prefs{}, err
	}
	return store, p, nil
}

func printState(cmd *cobra.Command, s equalizer.State) {
	out := cmd.OutOrStdout()
	status := "off"
	if s.Enabled {
		status = "on"
	}
	fmt.Fprintf(out, "Equalizer: %s  Preset: %s  Preamp: %s dB\n", status, equalizer.PresetLabel(s.Preset), formatGain(s.Preamp))

	headers := make([]string, 0, equalizer.BandCount)
	row := make([]string, 0, equalizer.BandCount)
	aligns := make([]columnAlignment, 0, equalizer.BandCount)
	for i, f := range equalizer.Frequencies {
		headers = append(headers, frequencyHeader(f))
		row = append(row, formatGain(s.Bands[i]))
		aligns = append(aligns, alignRight)
	}
	fmt.Fprintln(out, renderTable(headers, [][]string{row}, aligns))
}

func frequencyHeader(f float64) string {
	if f >= 1000 {
		return strconv.FormatFloat(f/1000, 'g', -1, 64) + "k"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatGain(db float64) string {
	return strconv.FormatFloat(db, 'f', -1, 64)
}
