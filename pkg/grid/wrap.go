package grid

import (
	"strings"
	"unicode"
)

// Wrap splits text into lines of at most width runes.
//
// Whitespace runs become single break points and are dropped at line edges.
// Words longer than width are split, preferring a break right after a hyphen.
// Words of letters joined by a hyphen may also break after the hyphen.
// Line breaks, tabs and other ASCII whitespace in text count as spaces.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	chunks := splitChunks(normalizeSpace(text))

	var lines []string
	for len(chunks) > 0 {
		if len(lines) > 0 && isBlank(chunks[0]) {
			chunks = chunks[1:]
		}

		var line []string
		n := 0
		for len(chunks) > 0 {
			l := len([]rune(chunks[0]))
			if n+l > width {
				break
			}
			line = append(line, chunks[0])
			n += l
			chunks = chunks[1:]
		}

		if len(chunks) > 0 && len([]rune(chunks[0])) > width {
			head, tail := splitLong(chunks[0], width-n)
			line = append(line, head)
			chunks[0] = tail
		}

		// Only the last chunk is dropped: a full line ending in a space
		// keeps it when the next word starts with an empty head.
		if len(line) > 0 && isBlank(line[len(line)-1]) {
			line = line[:len(line)-1]
		}
		if len(line) > 0 {
			lines = append(lines, strings.Join(line, ""))
		}
	}
	return lines
}

// CaptionLines trims, wraps and truncates a caption the way Compose draws it.
func CaptionLines(caption string) []string {
	text := strings.TrimSpace(caption)
	if text == "" {
		return nil
	}
	lines := Wrap(text, WrapWidth)
	if len(lines) > MaxCaptionLines {
		lines = lines[:MaxCaptionLines]
	}
	return lines
}

// splitLong cuts a word that cannot fit on any line so that its head fits in
// space runes.
func splitLong(word string, space int) (string, string) {
	r := []rune(word)
	end := space
	if len(r) > space {
		if h := lastHyphen(r[:space]); h > 0 && !allHyphens(r[:h]) {
			end = h + 1
		}
	}
	return string(r[:end]), string(r[end:])
}

// splitChunks splits normalized text into alternating word and space chunks.
func splitChunks(text string) []string {
	var chunks []string
	r := []rune(text)
	start := 0
	for i := 1; i <= len(r); i++ {
		if i == len(r) || (r[i] == ' ') != (r[start] == ' ') {
			chunk := r[start:i]
			if chunk[0] == ' ' {
				chunks = append(chunks, string(chunk))
			} else {
				chunks = append(chunks, splitHyphenated(chunk)...)
			}
			start = i
		}
	}
	return chunks
}

// splitHyphenated breaks a word after each hyphen that has at least two
// letters before it and two after it ("photo-grid" -> "photo-", "grid").
func splitHyphenated(w []rune) []string {
	var parts []string
	start := 0
	for i := 2; i < len(w)-2; i++ {
		if w[i] != '-' {
			continue
		}
		if isLetter(w[i-2]) && isLetter(w[i-1]) && isLetter(w[i+1]) && isLetter(w[i+2]) {
			parts = append(parts, string(w[start:i+1]))
			start = i + 1
		}
	}
	return append(parts, string(w[start:]))
}

// normalizeSpace expands tabs to 8-column stops and turns every ASCII
// whitespace character into a plain space.
func normalizeSpace(text string) string {
	var b strings.Builder
	col := 0
	for _, r := range text {
		switch r {
		case '\t':
			pad := 8 - col%8
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		case '\n', '\r':
			b.WriteRune(' ')
			col = 0
		case '\v', '\f':
			b.WriteRune(' ')
			col++
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

func isBlank(chunk string) bool { return strings.TrimLeft(chunk, " ") == "" }

// isLetter reports whether r is a word character other than a decimal digit.
// Underscores and non-decimal numerals such as superscripts count.
func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || (unicode.IsNumber(r) && !unicode.Is(unicode.Nd, r))
}

func lastHyphen(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == '-' {
			return i
		}
	}
	return -1
}

func allHyphens(r []rune) bool {
	for _, c := range r {
		if c != '-' {
			return false
		}
	}
	return true
}
