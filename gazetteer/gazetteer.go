// Package gazetteer provides offline entity recognizers: a list of known
// names loaded from YAML and a pattern matcher for calendar dates.
package gazetteer

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/evidex"
	"gopkg.in/yaml.v3"
)

// Ensure Gazetteer implements evidex.EntityRecognizer at compile time.
var _ evidex.EntityRecognizer = (*Gazetteer)(nil)

// File is the YAML layout of a gazetteer.
//
//	person: [Jane Doe, John Smith]
//	org: [Acme Corp]
//	place: [Paris]
type File struct {
	Person []string `yaml:"person"`
	Org    []string `yaml:"org"`
	Place  []string `yaml:"place"`
}

// Gazetteer finds known names case-insensitively on word boundaries.
// Whitespace inside a name matches any run of whitespace in the text.
type Gazetteer struct {
	types    []evidex.EntityType
	patterns map[evidex.EntityType]*regexp.Regexp
	version  string
}

// New builds a gazetteer from names grouped by type.
func New(names map[evidex.EntityType][]string) (*Gazetteer, error) {
	g := &Gazetteer{patterns: make(map[evidex.EntityType]*regexp.Regexp)}
	keys := make(map[evidex.EntityType][]string)
	for typ, list := range names {
		if _, err := evidex.ParseEntityType(string(typ)); err != nil {
			return nil, err
		}
		re, alts, err := compileNames(list)
		if err != nil {
			return nil, err
		}
		if re == nil {
			continue
		}
		g.types = append(g.types, typ)
		g.patterns[typ] = re
		keys[typ] = alts
	}
	slices.Sort(g.types)

	h := xxhash.New()
	for _, typ := range g.types {
		alts := slices.Clone(keys[typ])
		slices.Sort(alts)
		for _, alt := range alts {
			fmt.Fprintf(h, "%s\x00%s\n", typ, strings.ToLower(alt))
		}
	}
	g.version = fmt.Sprintf("%016x", h.Sum64())
	return g, nil
}

// Version fingerprints the loaded names. Reordering names or changing
// their case or spacing does not change it.
func (g *Gazetteer) Version() string {
	return g.version
}

// Parse builds a gazetteer from YAML.
func Parse(data []byte) (*Gazetteer, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, evidex.Errorf(evidex.EINVALID, "invalid gazetteer: %v", err)
	}
	return New(map[evidex.EntityType][]string{
		evidex.EntityPerson: f.Person,
		evidex.EntityOrg:    f.Org,
		evidex.EntityPlace:  f.Place,
	})
}

// Open reads a YAML gazetteer from path.
func Open(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, evidex.Errorf(evidex.EINVALID, "cannot read gazetteer: %v", err)
	}
	return Parse(data)
}

// compileNames builds one alternation with longer names first so the
// longest known name wins at any position. It also returns the quoted
// alternatives.
func compileNames(names []string) (*regexp.Regexp, []string, error) {
	var alts []string
	seen := make(map[string]bool)
	for _, name := range names {
		fields := strings.Fields(name)
		if len(fields) == 0 {
			continue
		}
		for i, f := range fields {
			fields[i] = regexp.QuoteMeta(f)
		}
		alt := strings.Join(fields, `\s+`)
		if seen[strings.ToLower(alt)] {
			continue
		}
		seen[strings.ToLower(alt)] = true
		alts = append(alts, alt)
	}
	if len(alts) == 0 {
		return nil, nil, nil
	}
	slices.SortStableFunc(alts, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
	if err != nil {
		return nil, nil, evidex.Errorf(evidex.EINVALID, "invalid gazetteer name: %v", err)
	}
	return re, alts, nil
}

// Infer returns every known name found in text.
func (g *Gazetteer) Infer(ctx context.Context, text string) ([]evidex.RawMention, error) {
	var mentions []evidex.RawMention
	for _, typ := range g.types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mentions = appendMatches(mentions, g.patterns[typ], typ, text)
	}
	return mentions, nil
}

func appendMatches(mentions []evidex.RawMention, re *regexp.Regexp, typ evidex.EntityType, text string) []evidex.RawMention {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !atBoundary(text, start, end) {
			continue
		}
		mentions = append(mentions, evidex.RawMention{
			Type:        typ,
			SurfaceText: text[start:end],
			StartOffset: start,
			EndOffset:   end,
		})
	}
	return mentions
}

// atBoundary reports whether text[start:end] is not glued to a letter or
// digit on either side.
func atBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
