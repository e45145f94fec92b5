package script

import (
	"errors"
	"regexp"
	"strings"
)

var ErrUnsplittable = errors.New("unsplittable script: no sentence-terminal punctuation")

var reTerminal = regexp.MustCompile(`[.!?…]+`)

// SplitSentences cuts a narration script on runs of terminal punctuation.
// Segments are trimmed and empty ones dropped; a trailing fragment without
// punctuation is kept as the last sentence.
func SplitSentences(s string) ([]string, error) {
	if !reTerminal.MatchString(s) {
		return nil, ErrUnsplittable
	}
	parts := reTerminal.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrUnsplittable
	}
	return out, nil
}

// Trim cuts s to at most n runes.
func Trim(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
