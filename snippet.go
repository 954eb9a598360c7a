package evidex

import "unicode/utf8"

// DefaultSnippetWindow is the number of bytes of context kept on each side
// of a match.
const DefaultSnippetWindow = 80

// Snippet returns the substring of text around match extended by window
// bytes on each side, and the exact range it was cut from. Range bounds
// are moved outward to UTF-8 rune boundaries so text[r.Start:r.End] always
// equals the returned snippet.
func Snippet(text string, match OffsetRange, window int) (string, OffsetRange) {
	if window < 0 {
		window = 0
	}
	start := clamp(match.Start-window, 0, len(text))
	end := clamp(match.End+window, start, len(text))
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end], OffsetRange{Start: start, End: end}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
