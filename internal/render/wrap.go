package render

import (
	"strings"
	"unicode/utf8"
)

// wrapText breaks text into lines no wider than width as measured by
// measure. Explicit newlines are kept; words longer than a line are split.
// The result always has at least one line.
func wrapText(measure func(string) float64, text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = w
			for measure(line) > width && utf8.RuneCountInString(line) > 1 {
				head := breakWord(measure, line, width)
				lines = append(lines, head)
				line = line[len(head):]
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// breakWord returns the longest prefix of word (at least one rune) that fits.
func breakWord(measure func(string) float64, word string, width float64) string {
	_, end := utf8.DecodeRuneInString(word)
	for i := range word {
		if i <= end {
			continue
		}
		if measure(word[:i]) > width {
			break
		}
		end = i
	}
	return word[:end]
}
