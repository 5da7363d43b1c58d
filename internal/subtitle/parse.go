package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	playerrors "github.com/jscyril/movix/pkg/errors"
)

// formatsByExtension maps lower-case file extensions to parsers. ".sub"
// files are read with the WebVTT rules.
var formatsByExtension = map[string]Format{
	"srt": FormatSRT,
	"vtt": FormatVTT,
	"sub": FormatVTT,
	"ass": FormatASS,
	"ssa": FormatASS,
}

// SupportedExtensions returns the subtitle file extensions Parse accepts
func SupportedExtensions() []string {
	return []string{".srt", ".vtt", ".sub", ".ass", ".ssa"}
}

// IsSubtitleFile reports whether path has a supported subtitle extension
func IsSubtitleFile(path string) bool {
	_, err := FormatFromFilename(path)
	return err == nil
}

// FormatFromFilename picks the parser for a file name by its extension
func FormatFromFilename(filename string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	format, ok := formatsByExtension[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", playerrors.ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// Parse converts the full text of one subtitle file into captions. The
// format comes from filename's extension; unknown extensions return an
// error wrapping ErrUnsupportedFormat. Malformed cues are skipped, so a
// file without valid cues yields an empty slice and no error.
func Parse(text, filename string) ([]Caption, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	return parseFormat(text, format), nil
}

func parseFormat(text string, format Format) []Caption {
	switch format {
	case FormatSRT:
		return parseSRT(text)
	case FormatASS:
		return parseASS(text)
	default:
		return parseVTT(text)
	}
}

// Load reads and parses a subtitle file from disk
func Load(path string) (*Track, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, &playerrors.SubtitleError{File: filepath.Base(path), Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &playerrors.SubtitleError{File: filepath.Base(path), Err: err}
	}

	text, err := DecodeText(data)
	if err != nil {
		return nil, &playerrors.SubtitleError{File: filepath.Base(path), Err: err}
	}

	return &Track{
		Name:     filepath.Base(path),
		Format:   format,
		Captions: parseFormat(text, format),
	}, nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// DecodeText turns raw subtitle bytes into a string. A byte order mark
// selects UTF-8 or UTF-16 and is removed; BOM-less input that is not
// valid UTF-8 is read as Windows-1252.
func DecodeText(data []byte) (string, error) {
	hasBOM := bytes.HasPrefix(data, bomUTF8) ||
		bytes.HasPrefix(data, bomUTF16BE) ||
		bytes.HasPrefix(data, bomUTF16LE)

	if !hasBOM && !utf8.Valid(data) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode windows-1252: %w", err)
		}
		return string(out), nil
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("decode unicode: %w", err)
	}
	return string(out), nil
}
