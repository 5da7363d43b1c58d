package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	playerrors "github.com/jscyril/movix/pkg/errors"
)

// decodeFunc turns an open file into a stream. Closing the stream closes
// the file.
type decodeFunc func(io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(r)
	},
	".wav": func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(r)
	},
	".flac": func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(r)
	},
}

// supportedFormats is the decoder table in display order
var supportedFormats = []string{".mp3", ".wav", ".flac"}

// SupportedFormats returns the playable file extensions
func SupportedFormats() []string {
	return slices.Clone(supportedFormats)
}

// IsSupported reports whether a file can be decoded, judged by extension
func IsSupported(filePath string) bool {
	_, ok := decoders[extension(filePath)]
	return ok
}

func extension(filePath string) string {
	return strings.ToLower(filepath.Ext(filePath))
}

// DecodeAudio decodes an already open file based on its extension
func DecodeAudio(r io.ReadSeekCloser, filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	decode, ok := decoders[extension(filePath)]
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, extension(filePath))
	}
	streamer, format, err := decode(r)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if format.SampleRate <= 0 || format.NumChannels <= 0 {
		streamer.Close()
		return nil, beep.Format{}, errors.New("invalid stream format")
	}
	return streamer, format, nil
}

// OpenFile opens and decodes a media file. Failures are PlayerErrors
// naming the path, with Op "open" or "decode".
func OpenFile(filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	if !IsSupported(filePath) {
		err := fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, extension(filePath))
		return nil, beep.Format{}, playerrors.NewPlayerError("decode", filePath, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, beep.Format{}, playerrors.NewPlayerError("open", filePath, err)
	}

	streamer, format, err := DecodeAudio(file, filePath)
	if err != nil {
		file.Close()
		return nil, beep.Format{}, playerrors.NewPlayerError("decode", filePath, err)
	}
	return streamer, format, nil
}
