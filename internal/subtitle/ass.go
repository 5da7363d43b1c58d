package subtitle

import (
	"regexp"
	"strings"
)

var (
	assOverrideRegex = regexp.MustCompile(`\{[^}]*\}`)
	assEscapes       = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ")
)

// parseASS reads the [Events] section of an ASS/SSA script. The Format
// line names the fields of every following Dialogue line.
func parseASS(text string) []Caption {
	captions := make([]Caption, 0)

	inEvents := false
	var formatColumns []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "[Events]") {
			inEvents = true
			continue
		}
		if !inEvents {
			continue
		}
		if strings.HasPrefix(line, "[") {
			break
		}

		if strings.HasPrefix(line, "Format:") {
			formatColumns = strings.Split(strings.TrimPrefix(line, "Format:"), ",")
			for i, col := range formatColumns {
				formatColumns[i] = strings.ToLower(strings.TrimSpace(col))
			}
			continue
		}

		if !strings.HasPrefix(line, "Dialogue:") {
			continue
		}

		values := splitASSFields(strings.TrimPrefix(line, "Dialogue:"), len(formatColumns))
		fields := make(map[string]string, len(formatColumns))
		for i := 0; i < len(formatColumns) && i < len(values); i++ {
			fields[formatColumns[i]] = values[i]
		}

		body := cleanASSText(fields["text"])
		if body == "" {
			continue
		}

		captions = append(captions, Caption{
			Start: ParseTime(fields["start"]),
			End:   ParseTime(fields["end"]),
			Text:  body,
		})
	}

	return captions
}

// splitASSFields splits a Dialogue payload on at most numFields-1 commas.
// The last field keeps any commas of its own.
func splitASSFields(content string, numFields int) []string {
	values := make([]string, 0, max(numFields, 1))
	remaining := content

	for len(values) < numFields-1 {
		idx := strings.IndexByte(remaining, ',')
		if idx == -1 {
			break
		}
		values = append(values, strings.TrimSpace(remaining[:idx]))
		remaining = remaining[idx+1:]
	}

	return append(values, strings.TrimSpace(remaining))
}

func cleanASSText(text string) string {
	text = assOverrideRegex.ReplaceAllString(text, "")
	text = assEscapes.Replace(text)
	return strings.TrimSpace(text)
}
