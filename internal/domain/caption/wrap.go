package caption

import "strings"

// Wrap splits text on newlines, then greedily fills lines of at most width
// runes. Words longer than width are broken across lines. An empty paragraph
// becomes an empty line.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapParagraph(para, width)...)
	}
	return out
}

func wrapParagraph(p string, width int) []string {
	var (
		lines []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}
	for _, word := range strings.Fields(p) {
		w := []rune(word)
		for len(w) > 0 {
			need := len(w)
			if len(cur) > 0 {
				need++
			}
			if len(cur)+need <= width {
				if len(cur) > 0 {
					cur = append(cur, ' ')
				}
				cur = append(cur, w...)
				break
			}
			if len(w) > width {
				space := width - len(cur)
				if len(cur) > 0 {
					space--
				}
				if space > 0 {
					if len(cur) > 0 {
						cur = append(cur, ' ')
					}
					cur = append(cur, w[:space]...)
					w = w[space:]
				}
			}
			flush()
		}
	}
	flush()
	return lines
}
