package subtitle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	playerrors "github.com/jscyril/movix/pkg/errors"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestParseSRT(t *testing.T) {
	content := "1\r\n00:01:02,500 --> 00:01:05,000\r\n<i>Hello</i>, {\\an8}world!\r\n\r\n" +
		"2\n00:01:06.000 --> 00:01:08.250\nFirst line\nSecond line\n\n\n" +
		"3\nnot a timing line\nDropped\n\n" +
		"4\n00:01:09,000 --> 00:01:10,000\n<b></b>\n\n" +
		"5\n00:01:11,000 --> 00:01:12,000\n"

	captions, err := Parse(content, "movie.srt")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(captions) != 2 {
		t.Fatalf("expected 2 captions, got %d: %+v", len(captions), captions)
	}

	if captions[0].Start != ms(62500) || captions[0].End != ms(65000) {
		t.Errorf("caption 0 range = [%v, %v], want [62.5s, 65s]", captions[0].Start, captions[0].End)
	}
	if captions[0].Text != "Hello, world!" {
		t.Errorf("caption 0 text = %q, want %q", captions[0].Text, "Hello, world!")
	}
	if captions[1].Text != "First line\nSecond line" {
		t.Errorf("caption 1 text = %q", captions[1].Text)
	}
	if captions[1].End != ms(68250) {
		t.Errorf("caption 1 end = %v, want 1m8.25s", captions[1].End)
	}
}

func TestParseVTT(t *testing.T) {
	content := `WEBVTT - sample

NOTE this block is ignored

intro
00:00:01.000 --> 00:00:04.000 align:start
<v Roger>Tom &amp; Jerry &lt;3</v>

01:05.500 --> 01:07.000
Short form

00:00:08,000 --> 00:00:09,000
Comma separator is not valid WebVTT
`

	captions, err := Parse(content, "clip.VTT")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(captions) != 2 {
		t.Fatalf("expected 2 captions, got %d: %+v", len(captions), captions)
	}

	if captions[0].Start != time.Second || captions[0].End != 4*time.Second {
		t.Errorf("caption 0 range = [%v, %v]", captions[0].Start, captions[0].End)
	}
	if captions[0].Text != "Tom & Jerry <3" {
		t.Errorf("caption 0 text = %q", captions[0].Text)
	}
	if captions[1].Start != ms(65500) || captions[1].End != ms(67000) {
		t.Errorf("caption 1 range = [%v, %v], want [1m5.5s, 1m7s]", captions[1].Start, captions[1].End)
	}
}

func TestParseVTTHeaderWithoutBlankLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "cue right after header",
			content: "WEBVTT\n00:00.000 --> 00:01.000\nHello\n\n00:02.000 --> 00:03.000\nWorld",
			want:    []string{"Hello", "World"},
		},
		{
			name:    "header with metadata line",
			content: "WEBVTT\nKind: captions\n\n00:02.000 --> 00:03.000\nWorld",
			want:    []string{"World"},
		},
		{
			name:    "header only",
			content: "WEBVTT\n\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captions, err := Parse(tt.content, "a.vtt")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			var got []string
			for _, c := range captions {
				got = append(got, c.Text)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Parse() texts = %v, want %v", got, tt.want)
			}
		})
	}

	captions, _ := Parse(tests[0].content, "a.vtt")
	if captions[0].Start != 0 || captions[0].End != time.Second {
		t.Errorf("caption 0 range = [%v, %v], want [0s, 1s]", captions[0].Start, captions[0].End)
	}
}

func TestParseSubUsesVTTRules(t *testing.T) {
	content := "00:00:02.000 --> 00:00:03.000\nfrom a .sub file\n"

	captions, err := Parse(content, "legacy.sub")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(captions) != 1 || captions[0].Text != "from a .sub file" {
		t.Errorf("unexpected captions: %+v", captions)
	}
}

func TestParseASS(t *testing.T) {
	content := `[Script Info]
Title: Sample
Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,Not in events

[V4+ Styles]
Format: Name, Fontname

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Comment: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,ignored
Dialogue: 0,0:00:01.50,0:00:04.00,Default,,0,0,0,,{\b1}Well, hello,\Nthere\hfriend
Dialogue: 0,0:00:05.00,0:00:06.00,Default,,0,0,0,,{\pos(10,10)}

[Fonts]
Dialogue: 0,0:00:07.00,0:00:08.00,Default,,0,0,0,,After events
`

	captions, err := Parse(content, "anime.ass")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(captions) != 1 {
		t.Fatalf("expected 1 caption, got %d: %+v", len(captions), captions)
	}

	c := captions[0]
	if c.Start != ms(1500) || c.End != 4*time.Second {
		t.Errorf("range = [%v, %v], want [1.5s, 4s]", c.Start, c.End)
	}
	if c.Text != "Well, hello,\nthere friend" {
		t.Errorf("text = %q", c.Text)
	}
}

func TestSplitASSFieldsKeepsCommasInLastField(t *testing.T) {
	fields := splitASSFields(" 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,one, two, three", 10)

	if len(fields) != 10 {
		t.Fatalf("expected 10 fields, got %d: %q", len(fields), fields)
	}
	if fields[9] != "one, two, three" {
		t.Errorf("text field = %q, want %q", fields[9], "one, two, three")
	}
	if fields[0] != "0" || fields[3] != "Default" || fields[4] != "" {
		t.Errorf("unexpected leading fields: %q", fields[:5])
	}
}

func TestSplitASSFieldsWithoutFormat(t *testing.T) {
	fields := splitASSFields("a,b,c", 0)
	if len(fields) != 1 || fields[0] != "a,b,c" {
		t.Errorf("splitASSFields(_, 0) = %q", fields)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	existing := []Caption{{Start: 0, End: time.Second, Text: "kept"}}

	captions, err := Parse("1\n00:00:01,000 --> 00:00:02,000\nhi\n", "file.xyz")
	if !errors.Is(err, playerrors.ErrUnsupportedFormat) {
		t.Fatalf("Parse() error = %v, want ErrUnsupportedFormat", err)
	}
	if captions != nil {
		t.Errorf("expected nil captions, got %+v", captions)
	}
	if len(existing) != 1 || existing[0].Text != "kept" {
		t.Error("existing captions must not be touched")
	}
}

func TestParseNoValidBlocks(t *testing.T) {
	captions, err := Parse("garbage\n\nmore garbage", "broken.srt")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if captions == nil || len(captions) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", captions)
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"a.srt", FormatSRT, false},
		{"A.SRT", FormatSRT, false},
		{"b.vtt", FormatVTT, false},
		{"c.sub", FormatVTT, false},
		{"d.ass", FormatASS, false},
		{"e.ssa", FormatASS, false},
		{"f.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromFilename(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromFilename(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromFilename(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain utf-8", []byte("héllo"), "héllo"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...), "hi"},
		{"utf-16 le bom", []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}, "hi"},
		{"utf-16 be bom", []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}, "hi"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9}, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			if err != nil {
				t.Fatalf("DecodeText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "episode.srt")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("1\n00:00:01,000 --> 00:00:02,000\nLoaded\n")...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	track, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if track.Name != "episode.srt" || track.Format != FormatSRT {
		t.Errorf("track = %+v", track)
	}
	if track.Len() != 1 || track.Captions[0].Text != "Loaded" {
		t.Errorf("captions = %+v", track.Captions)
	}

	_, err = Load(filepath.Join(dir, "episode.xyz"))
	var subErr *playerrors.SubtitleError
	if !errors.As(err, &subErr) || !errors.Is(err, playerrors.ErrUnsupportedFormat) {
		t.Errorf("Load(.xyz) error = %v, want SubtitleError wrapping ErrUnsupportedFormat", err)
	}
}
