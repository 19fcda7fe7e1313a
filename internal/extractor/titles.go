package extractor

import "strings"

// NoTitlesSentinel is the model's answer when the image shows no movie titles.
const NoTitlesSentinel = "No movie titles detected"

// ParseTitles splits model output into titles: one per line, trimmed, without empty lines and
// without the sentinel line. Order and duplicates are kept.
func ParseTitles(text string) []string {
	lines := strings.Split(text, "\n")
	titles := make([]string, 0, len(lines))
	for _, line := range lines {
		title := strings.TrimSpace(line)
		if title == "" || title == NoTitlesSentinel {
			continue
		}
		titles = append(titles, title)
	}
	return titles
}
