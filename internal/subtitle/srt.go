package subtitle

import (
	"regexp"
	"strings"
)

var (
	srtTimingRegex = regexp.MustCompile(
		`(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{3})`,
	)
	blockSeparator = regexp.MustCompile(`\n\n+`)
	markupTagRegex = regexp.MustCompile(`<[^>]+>`)
	braceTagRegex  = regexp.MustCompile(`\{[^}]+\}`)
)

// normalizeNewlines converts CRLF and lone CR line endings to LF
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// splitBlocks splits on runs of blank lines and returns each block's lines
func splitBlocks(text string) [][]string {
	raw := blockSeparator.Split(text, -1)
	blocks := make([][]string, 0, len(raw))
	for _, block := range raw {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blocks = append(blocks, strings.Split(block, "\n"))
	}
	return blocks
}

// parseSRT reads SubRip text. Each block is an index line, a timing line
// and one or more text lines; anything else is skipped.
func parseSRT(text string) []Caption {
	captions := make([]Caption, 0)

	for _, lines := range splitBlocks(normalizeNewlines(text)) {
		if len(lines) < 3 {
			continue
		}

		matches := srtTimingRegex.FindStringSubmatch(lines[1])
		if matches == nil {
			continue
		}

		body := cleanSRTText(strings.Join(lines[2:], "\n"))
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

func cleanSRTText(text string) string {
	text = markupTagRegex.ReplaceAllString(text, "")
	text = braceTagRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
