package blogservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestReadingTime(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want int
	}{
		{name: "empty body", body: "", want: 1},
		{name: "one word", body: "hello", want: 1},
		{name: "exactly one minute", body: words(200), want: 1},
		{name: "just over one minute", body: words(201), want: 2},
		{name: "250 words", body: words(250), want: 2},
		{name: "1000 words", body: words(1000), want: 5},
		{name: "extra whitespace is ignored", body: "  one \n\n two\tthree  ", want: 1},
		{name: "tags are not words", body: strings.Repeat("<p></p>", 500) + words(10), want: 1},
		{name: "tags inside a word are stripped", body: strings.Repeat("wo<i>r</i>d ", 201), want: 2},
		{name: "adjacent tags join words", body: strings.Repeat("a<br>b ", 300), want: 2},
		{name: "tag between spaces", body: strings.Repeat("a <br> b ", 100), want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReadingTime(tc.body))
		})
	}
}
