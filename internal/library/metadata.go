package library

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/audio"
	"github.com/jscyril/movix/internal/subtitle"
)

// MetadataReader extracts metadata from audio files
type MetadataReader struct{}

// NewMetadataReader creates a new metadata reader
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Read builds a Track from a file's tags. Files without readable tags are
// named after the file.
func (r *MetadataReader) Read(filePath string) (*api.Track, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	track := &api.Track{
		ID:        generateTrackID(filePath),
		Title:     displayName(filePath),
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return track, nil
	}

	track.Title = getOrDefault(metadata.Title(), track.Title)
	track.Artist = getOrDefault(metadata.Artist(), "Unknown Artist")
	track.Album = getOrDefault(metadata.Album(), "Unknown Album")
	track.Genre = metadata.Genre()
	track.Year = metadata.Year()
	track.TrackNum, _ = metadata.Track()
	return track, nil
}

// ReadCoverArt extracts cover art from an audio file
func (r *MetadataReader) ReadCoverArt(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	if picture := metadata.Picture(); picture != nil {
		return picture.Data, nil
	}

	return nil, nil
}

// MediaInfo is what the info panel shows about a file
type MediaInfo struct {
	Name       string
	Path       string
	Size       int64
	Modified   time.Time
	Container  string
	TagFormat  string
	Duration   time.Duration
	SampleRate int
	Title      string
	Artist     string
	Album      string
	Genre      string
	Year       int
	HasCover   bool
	Subtitles  []string
}

// HumanSize renders the file size for display
func (i *MediaInfo) HumanSize() string {
	return humanize.Bytes(uint64(i.Size))
}

// Age renders the modification time relative to now
func (i *MediaInfo) Age() string {
	return humanize.Time(i.Modified)
}

// ReadMediaInfo collects file, tag and stream details. Missing tags or an
// undecodable stream leave the related fields empty.
func ReadMediaInfo(filePath string) (*MediaInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}

	info := &MediaInfo{
		Name:      filepath.Base(filePath),
		Path:      filePath,
		Size:      stat.Size(),
		Modified:  stat.ModTime(),
		Container: strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), "."),
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if metadata, err := tag.ReadFrom(file); err == nil {
		info.TagFormat = string(metadata.Format())
		info.Title = metadata.Title()
		info.Artist = metadata.Artist()
		info.Album = metadata.Album()
		info.Genre = metadata.Genre()
		info.Year = metadata.Year()
		info.HasCover = metadata.Picture() != nil
	}

	if _, err := file.Seek(0, 0); err == nil {
		if streamer, format, err := audio.DecodeAudio(file, filePath); err == nil {
			info.SampleRate = int(format.SampleRate)
			info.Duration = format.SampleRate.D(streamer.Len())
			// closing the streamer closes file; the deferred Close is a no-op
			streamer.Close()
		}
	}

	info.Subtitles = FindSubtitles(filePath)
	return info, nil
}

// FindSubtitles lists subtitle files next to a media file that share its
// base name, such as movie.srt or movie.en.vtt for movie.mp3
func FindSubtitles(mediaPath string) []string {
	dir := filepath.Dir(mediaPath)
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var found []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !subtitle.IsSubtitleFile(name) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if stem == base || strings.HasPrefix(stem, base+".") {
			found = append(found, filepath.Join(dir, name))
		}
	}
	sort.Strings(found)
	return found
}

// generateTrackID derives a stable ID from the file path
func generateTrackID(filePath string) string {
	hash := md5.Sum([]byte(filePath))
	return fmt.Sprintf("track-%x", hash[:8])
}

// displayName is the file name without its extension
func displayName(filePath string) string {
	name := filepath.Base(filePath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// getOrDefault returns the value if non-empty, otherwise returns the default
func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
