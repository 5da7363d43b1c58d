package library

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/audio"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

// Scanner walks directories and reads track metadata on a bounded pool
// of goroutines
type Scanner struct {
	workers    int
	metaReader *MetadataReader
}

// NewScanner creates a new file scanner
func NewScanner(workers int) *Scanner {
	if workers <= 0 {
		workers = 4 // Default worker count
	}
	return &Scanner{
		workers:    workers,
		metaReader: NewMetadataReader(),
	}
}

// Scan walks paths and returns the playable tracks found, sorted by path.
// Per-file problems do not stop the scan; they come back joined as
// ScanErrors next to the tracks. Cancelling ctx stops the walk and
// returns the context error.
func (s *Scanner) Scan(ctx context.Context, paths []string) ([]*api.Track, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var (
		mu       sync.Mutex
		tracks   []*api.Track
		scanErrs []error
	)
	record := func(track *api.Track, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			scanErrs = append(scanErrs, err)
			return
		}
		tracks = append(tracks, track)
	}

	var walkErr error
	for _, root := range paths {
		walkErr = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				record(nil, &playerrors.ScanError{Path: p, Err: err})
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !audio.IsSupported(p) {
				return nil
			}

			g.Go(func() error {
				track, err := s.metaReader.Read(p)
				if err != nil {
					record(nil, &playerrors.ScanError{Path: p, Err: err})
					return nil
				}
				record(track, nil)
				return nil
			})
			return nil
		})
		if walkErr != nil {
			break
		}
	}

	_ = g.Wait()
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].FilePath < tracks[j].FilePath
	})
	return tracks, errors.Join(scanErrs...)
}

// ScanFile scans a single file and returns a Track
func (s *Scanner) ScanFile(filePath string) (*api.Track, error) {
	if !audio.IsSupported(filePath) {
		return nil, playerrors.ErrInvalidFormat
	}
	return s.metaReader.Read(filePath)
}
