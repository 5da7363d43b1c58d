package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faiface/beep"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jscyril/movix/internal/audio"
	"github.com/jscyril/movix/internal/config"
	"github.com/jscyril/movix/internal/equalizer"
	"github.com/jscyril/movix/internal/history"
	"github.com/jscyril/movix/internal/library"
	"github.com/jscyril/movix/internal/playlist"
	"github.com/jscyril/movix/internal/prefs"
	"github.com/jscyril/movix/internal/ui"
	"github.com/jscyril/movix/pkg/events"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runPlayer wires the services together and runs the TUI until quit
func runPlayer(cmd *cobra.Command, cc *commandContext, files []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errors.New("movix needs an interactive terminal; see `movix --help` for non-interactive commands")
	}

	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger, err := cc.newLogger(false)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	bus := events.NewEventBus()
	defer bus.Close()

	engine := audio.NewAudioEngine(bus, logger.Named("audio"), audioOptions(cfg))
	engine.Start(ctx)

	prefsStore := prefs.NewStore(cfg.PrefsPath())
	session := ui.LoadSession(prefsStore, cfg, logger.Named("prefs"))

	eqState := session.Prefs().Equalizer
	eq := equalizer.NewEngine(&eqState, logger.Named("equalizer"))
	eq.OnChange(func(s equalizer.State) {
		_ = session.Update(func(p *prefs.Prefs) { p.Equalizer = s })
	})
	eq.BindOnStart(ctx, bus)
	defer eq.Close() //nolint:errcheck
	// the engine releases the speaker before the equalizer detaches
	defer func() {
		cancel()
		engine.Wait()
	}()

	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		hist = nil
	} else {
		defer hist.Close()
	}

	lib, err := loadLibrary(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := lib.Save(cfg.LibraryPath()); err != nil {
			logger.Warn("save library", zap.Error(err))
		}
	}()

	plManager := playlist.NewManager(cfg.PlaylistDir())
	if err := plManager.LoadAll(); err != nil {
		logger.Warn("load playlists", zap.Error(err))
	}

	deps := ui.Deps{
		Config:    cfg,
		Engine:    engine,
		Equalizer: eq,
		Library:   lib,
		Playlists: plManager,
		History:   hist,
		Session:   session,
		Bus:       bus,
		Logger:    logger.Named("ui"),
		Files:     files,
	}
	if err := ui.Run(deps); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func audioOptions(cfg *config.Config) audio.Options {
	opts := audio.DefaultOptions()
	opts.SampleRate = beep.SampleRate(cfg.Audio.SampleRate)
	opts.BufferSize = time.Duration(cfg.Audio.BufferMillis) * time.Millisecond
	opts.ResampleQuality = cfg.Audio.ResampleQuality
	return opts
}

// loadLibrary reads the saved library and scans the configured
// directories when it is empty
func loadLibrary(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*library.Library, error) {
	lib, err := library.LoadLibrary(cfg.LibraryPath(), cfg.ScanWorkers)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	if lib.Len() > 0 || len(cfg.MusicDirectories) == 0 {
		return lib, nil
	}

	if err := lib.Scan(ctx, cfg.MusicDirectories); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		logger.Warn("scan library", zap.Error(err))
	}
	logger.Info("library scanned", zap.Int("tracks", lib.Len()), zap.Strings("paths", cfg.MusicDirectories))
	return lib, nil
}
