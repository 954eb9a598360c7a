package main

import (
	"fmt"

	"github.com/fwojciec/evidex"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	if deps.PageStore == nil {
		return evidex.Errorf(evidex.EINTERNAL, "page store not configured")
	}

	status := evidex.StatusOK
	docs, err := deps.Documents.FindDocuments(deps.Ctx, evidex.DocumentFilter{Status: &status})
	if err != nil {
		return failf(deps, err)
	}

	var pages int
	for _, d := range docs {
		for n := 1; n <= d.PageCount; n++ {
			page, err := deps.Documents.FindPage(deps.Ctx, d.Path, n)
			if err != nil {
				_ = deps.PageStore.Abort()
				return failf(deps, err)
			}
			if err := deps.PageStore.Save(deps.Ctx, page); err != nil {
				_ = deps.PageStore.Abort()
				return failf(deps, err)
			}
			pages++
		}
	}

	if err := deps.PageStore.Commit(); err != nil {
		_ = deps.PageStore.Abort()
		return failf(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Exported %d pages from %d documents to %s\n", pages, len(docs), c.Dir)
	return nil
}
