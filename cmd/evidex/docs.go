package main

import (
	"fmt"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/fs"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	filter := evidex.DocumentFilter{}
	if c.Failed {
		status := evidex.StatusFailed
		filter.Status = &status
	}

	docs, err := deps.Documents.FindDocuments(deps.Ctx, filter)
	if err != nil {
		return failf(deps, err)
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'evidex ingest DIR' to add some.")
		return nil
	}

	for _, d := range docs {
		if d.Status == evidex.StatusFailed {
			fmt.Fprintf(deps.Stdout, "%s  FAILED  %s\n", d.Path, d.FailureReason)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %d pages  %s\n", d.Path, d.PageCount, d.IngestedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// Run executes the page command.
func (c *PageCmd) Run(deps *Dependencies) error {
	page, err := deps.Documents.FindPage(deps.Ctx, c.Path, c.Number)
	if err != nil {
		return failf(deps, err)
	}

	out, err := fs.FormatPage(page)
	if err != nil {
		return failf(deps, err)
	}
	fmt.Fprint(deps.Stdout, out)
	return nil
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	st, err := deps.Index.Stats(deps.Ctx)
	if err != nil {
		return failf(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "documents:       %d\nfailed:          %d\npages:           %d\n"+
		"entities:        %d\nmentions:        %d\nassets:          %d\nasset mentions:  %d\n",
		st.Documents, st.Failed, st.Pages, st.Entities, st.Mentions, st.Assets, st.AssetMentions)
	return nil
}
