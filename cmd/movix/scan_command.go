package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jscyril/movix/internal/audio"
	"github.com/jscyril/movix/internal/library"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scan [dirs...]",
		Short: "Scan directories into the library (defaults to the configured music directories)",
		Long:  "Scan directories recursively for " + strings.Join(audio.SupportedFormats(), ", ") + " files and add them to the library.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			dirs := args
			if len(dirs) == 0 {
				dirs = cfg.MusicDirectories
			}
			if len(dirs) == 0 {
				return errors.New("no directories given and music_directories is empty")
			}

			lib, err := library.LoadLibrary(cfg.LibraryPath(), cfg.ScanWorkers)
			if err != nil {
				return err
			}
			before := lib.Len()

			scanErr := lib.Scan(cmd.Context(), dirs)
			var se *playerrors.ScanError
			if scanErr != nil && !errors.As(scanErr, &se) {
				return scanErr
			}
			if scanErr != nil {
				logger.Warn("scan finished with errors", zap.Error(scanErr))
			}

			if err := lib.Save(cfg.LibraryPath()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Library: %d tracks (%+d)\n", lib.Len(), lib.Len()-before)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log scan problems to stderr")
	return cmd
}
