package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/evidex"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	limit := c.Limit
	if limit <= 0 {
		limit = evidex.DefaultSearchLimit
	}
	// One extra hit tells a full page from a truncated one.
	filter := evidex.SearchFilter{
		DocumentPaths: c.Doc,
		Limit:         limit + 1,
	}
	if c.From != "" {
		from, err := parseDateFlag(c.From, false)
		if err != nil {
			return failf(deps, err)
		}
		filter.DateFrom = &from
	}
	if c.To != "" {
		to, err := parseDateFlag(c.To, true)
		if err != nil {
			return failf(deps, err)
		}
		filter.DateTo = &to
	}
	for _, s := range c.HasType {
		typ, err := evidex.ParseEntityType(s)
		if err != nil {
			return failf(deps, err)
		}
		filter.EntityTypes = append(filter.EntityTypes, typ)
	}

	hits, err := deps.Search.Search(deps.Ctx, c.Query, filter)
	if err != nil {
		return failf(deps, err)
	}

	more := len(hits) > limit
	if more {
		hits = hits[:limit]
	}

	if c.JSON {
		if more {
			fmt.Fprintf(deps.Stderr, "showing first %d hits; more results exist (raise --limit)\n", limit)
		}
		return writeJSON(deps.Stdout, hits)
	}
	if len(hits) == 0 {
		fmt.Fprintln(deps.Stdout, "No matches.")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(deps.Stdout, "%s  page %d  %s %.2f  [%d:%d]%s\n",
			h.DocumentPath, h.PageNumber, h.ExtractionMethod, h.Confidence,
			h.Offsets.Start, h.Offsets.End, lowConfidenceMark(h.LowConfidence))
		fmt.Fprintf(deps.Stdout, "    %s\n", oneLine(h.Snippet))
	}
	if more {
		fmt.Fprintf(deps.Stdout, "(showing first %d hits; more results exist, raise --limit)\n", limit)
	}
	return nil
}

// Run executes the entities command.
func (c *EntitiesCmd) Run(deps *Dependencies) error {
	typ, err := evidex.ParseEntityType(c.Type)
	if err != nil {
		return failf(deps, err)
	}
	mode := evidex.MatchExact
	if c.Prefix {
		mode = evidex.MatchPrefix
	}

	results, err := deps.Search.FindEntities(deps.Ctx, typ, c.Text, mode)
	if err != nil {
		return failf(deps, err)
	}

	if c.JSON {
		return writeJSON(deps.Stdout, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching entities.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s %q (%d mentions)\n", r.Entity.Type, r.Entity.CanonicalText, r.MentionCount)
		for _, m := range r.Mentions {
			fmt.Fprintf(deps.Stdout, "  %s  page %d  [%d:%d]  %q\n",
				m.DocumentPath, m.PageNumber, m.Offsets.Start, m.Offsets.End, m.SurfaceText)
			fmt.Fprintf(deps.Stdout, "    %s\n", oneLine(m.Snippet))
		}
	}
	return nil
}

// Run executes the top command.
func (c *TopCmd) Run(deps *Dependencies) error {
	typ, err := evidex.ParseEntityType(c.Type)
	if err != nil {
		return failf(deps, err)
	}

	counts, err := deps.Search.TopEntities(deps.Ctx, typ, c.Limit)
	if err != nil {
		return failf(deps, err)
	}

	if len(counts) == 0 {
		fmt.Fprintf(deps.Stdout, "No %s entities indexed.\n", typ)
		return nil
	}
	for i, ec := range counts {
		fmt.Fprintf(deps.Stdout, "%3d. %s  %d mentions in %d documents\n",
			i+1, ec.Entity.CanonicalText, ec.MentionCount, ec.Documents)
	}
	return nil
}

// Run executes the assets command. Without a value it lists the most
// referenced assets of the type.
func (c *AssetsCmd) Run(deps *Dependencies) error {
	typ, err := evidex.ParseAssetType(c.Type)
	if err != nil {
		return failf(deps, err)
	}

	if c.Value == "" {
		counts, err := deps.Search.TopAssets(deps.Ctx, typ, c.Limit)
		if err != nil {
			return failf(deps, err)
		}
		if c.JSON {
			return writeJSON(deps.Stdout, counts)
		}
		if len(counts) == 0 {
			fmt.Fprintf(deps.Stdout, "No %s assets indexed.\n", typ)
			return nil
		}
		for i, ac := range counts {
			fmt.Fprintf(deps.Stdout, "%3d. %s  %d mentions in %d documents\n",
				i+1, ac.Asset.CanonicalText, ac.MentionCount, ac.Documents)
		}
		return nil
	}

	mode := evidex.MatchExact
	if c.Prefix {
		mode = evidex.MatchPrefix
	}
	results, err := deps.Search.FindAssets(deps.Ctx, typ, c.Value, mode)
	if err != nil {
		return failf(deps, err)
	}
	if c.JSON {
		return writeJSON(deps.Stdout, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching assets.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s %s (%d mentions)\n", r.Asset.Type, r.Asset.CanonicalText, r.MentionCount)
		for _, m := range r.Mentions {
			fmt.Fprintf(deps.Stdout, "  %s  page %d  [%d:%d]  %q\n",
				m.DocumentPath, m.PageNumber, m.Offsets.Start, m.Offsets.End, m.SurfaceText)
			fmt.Fprintf(deps.Stdout, "    %s\n", oneLine(m.Snippet))
		}
	}
	return nil
}

// parseDateFlag parses YYYY, YYYY-MM or YYYY-MM-DD. Partial dates resolve
// to the first day of their span, or the last when end is set.
func parseDateFlag(s string, end bool) (time.Time, error) {
	layouts := []struct {
		layout string
		years  int
		months int
	}{
		{"2006-01-02", 0, 0},
		{"2006-01", 0, 1},
		{"2006", 1, 0},
	}
	for _, l := range layouts {
		t, err := time.Parse(l.layout, strings.TrimSpace(s))
		if err != nil {
			continue
		}
		if end && (l.years > 0 || l.months > 0) {
			t = t.AddDate(l.years, l.months, -1)
		}
		return t, nil
	}
	return time.Time{}, evidex.Errorf(evidex.EINVALID, "invalid date %q: use YYYY, YYYY-MM or YYYY-MM-DD", s)
}

func lowConfidenceMark(low bool) string {
	if low {
		return "  low-confidence"
	}
	return ""
}

// oneLine flattens whitespace for display. Offsets always refer to the
// stored text, never to this form.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
