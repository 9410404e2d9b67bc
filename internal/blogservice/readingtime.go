package blogservice

import (
	"regexp"
	"strings"
)

const WordsPerMinute = 200

var markupTagRX = regexp.MustCompile(`<[^>]*>`)

// ReadingTime estimates whole minutes to read body, never less than one.
func ReadingTime(body string) int {
	words := len(strings.Fields(markupTagRX.ReplaceAllString(body, "")))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return max(minutes, 1)
}
