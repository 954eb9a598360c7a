package evidex

import (
	"strings"
	"unicode"
)

// QueryTerm is one keyword or quoted phrase of a search query.
type QueryTerm struct {
	// Words are the lowercased tokens of the term, matched consecutively.
	Words []string

	// Prefix matches the last word as a prefix ("invoic*").
	Prefix bool

	// Or joins the term to the previous one with OR instead of AND.
	Or bool
}

// Query is a parsed keyword query.
type Query struct {
	Terms []QueryTerm
}

// IsEmpty reports whether the query has no searchable terms.
func (q Query) IsEmpty() bool { return len(q.Terms) == 0 }

// ParseQuery parses a user query. Bare words are ANDed, double quotes form
// phrases, a trailing * makes a prefix term and an upper-case OR between
// two terms makes them alternatives. Any other punctuation is treated as a
// word separator, the same way the full-text tokenizer treats it.
func ParseQuery(s string) Query {
	s = strings.ReplaceAll(s, "\x00", " ")

	var q Query
	pendingOr := false
	for _, raw := range splitQuery(s) {
		if raw.text == "OR" && !raw.quoted {
			pendingOr = len(q.Terms) > 0
			continue
		}
		text := raw.text
		prefix := false
		if strings.HasSuffix(text, "*") {
			prefix = true
			text = strings.TrimRight(text, "*")
		}
		words := Tokenize(text)
		if len(words) == 0 {
			continue
		}
		term := QueryTerm{Prefix: prefix, Or: pendingOr}
		for _, w := range words {
			term.Words = append(term.Words, w.Text)
		}
		q.Terms = append(q.Terms, term)
		pendingOr = false
	}
	return q
}

type rawToken struct {
	text   string
	quoted bool
}

func splitQuery(s string) []rawToken {
	var out []rawToken
	var b strings.Builder
	inQuote := false
	flush := func(quoted bool) {
		if b.Len() > 0 {
			out = append(out, rawToken{text: b.String(), quoted: quoted})
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			flush(inQuote)
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush(false)
		default:
			b.WriteRune(r)
		}
	}
	flush(inQuote)
	return out
}

// Token is a word of page text with its byte offsets.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into lowercased words. Letters, digits and
// private-use characters form words; everything else, combining marks
// included, separates them. This matches the unicode61 tokenizer of the
// full-text index.
func Tokenize(text string) []Token {
	var tokens []Token
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Text: strings.ToLower(text[start:i]), Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: strings.ToLower(text[start:]), Start: start, End: len(text)})
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Co, r)
}

// FindMatch returns the earliest range of text matched by any term of q.
func FindMatch(text string, q Query) (OffsetRange, bool) {
	tokens := Tokenize(text)
	best := OffsetRange{Start: -1}
	for _, term := range q.Terms {
		r, ok := findTerm(tokens, term)
		if ok && (best.Start < 0 || r.Start < best.Start) {
			best = r
		}
	}
	if best.Start < 0 {
		return OffsetRange{}, false
	}
	return best, true
}

func findTerm(tokens []Token, term QueryTerm) (OffsetRange, bool) {
	n := len(term.Words)
	for i := 0; i+n <= len(tokens); i++ {
		matched := true
		for j, w := range term.Words {
			tok := tokens[i+j].Text
			if j == n-1 && term.Prefix {
				matched = strings.HasPrefix(tok, w)
			} else {
				matched = tok == w
			}
			if !matched {
				break
			}
		}
		if matched {
			return OffsetRange{Start: tokens[i].Start, End: tokens[i+n-1].End}, true
		}
	}
	return OffsetRange{}, false
}
