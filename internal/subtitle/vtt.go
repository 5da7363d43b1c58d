package subtitle

import (
	"regexp"
	"strings"
)

var vttTimingRegex = regexp.MustCompile(
	`(\d{2}:\d{2}:\d{2}\.\d{3}|\d{2}:\d{2}\.\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}\.\d{3}|\d{2}:\d{2}\.\d{3})`,
)

var vttEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

// parseVTT reads WebVTT text. A cue may start with an identifier line, in
// which case the timing is on its second line.
func parseVTT(text string) []Caption {
	captions := make([]Caption, 0)

	for _, lines := range splitBlocks(stripVTTHeader(normalizeNewlines(text))) {
		if len(lines) < 2 {
			continue
		}

		timingIndex := 0
		if !strings.Contains(lines[0], "-->") {
			timingIndex = 1
		}

		matches := vttTimingRegex.FindStringSubmatch(lines[timingIndex])
		if matches == nil {
			continue
		}

		body := cleanVTTText(strings.Join(lines[timingIndex+1:], "\n"))
		if body == "" {
			continue
		}

		captions = append(captions, Caption{
			Start: ParseTime(matches[1]),
			End:   ParseTime(matches[2]),
			Text:  body,
		})
	}

	return captions
}

// stripVTTHeader drops a one-line WEBVTT header followed by a blank
// line. Any other start is left for the cue parser.
func stripVTTHeader(text string) string {
	if len(text) < 6 || !strings.EqualFold(text[:6], "WEBVTT") {
		return text
	}
	end := strings.IndexByte(text, '\n')
	if end < 0 || !strings.HasPrefix(text[end:], "\n\n") {
		return text
	}
	return text[end+2:]
}

func cleanVTTText(text string) string {
	text = markupTagRegex.ReplaceAllString(text, "")
	text = vttEntities.Replace(text)
	return strings.TrimSpace(text)
}
