package main

import (
	"fmt"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/pipeline"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	if deps.Ingester == nil {
		return evidex.Errorf(evidex.EINTERNAL, "ingester not configured")
	}
	if c.Workers > 0 {
		deps.Ingester.Workers = c.Workers
	}
	if c.Timeout > 0 {
		deps.Ingester.Timeout = c.Timeout
	}

	progress := func(event pipeline.ProgressEvent) {
		switch event.Type {
		case pipeline.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d files\n", event.Total)
		case pipeline.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s: %s\n",
				pipeline.TruncatePath(event.Path, 60), evidex.FailureReason(event.Error))
		}
	}

	summary, err := deps.Ingester.Ingest(deps.Ctx, c.Dir, progress)
	if summary != nil {
		fmt.Fprintf(deps.Stdout, "  Succeeded %d, unchanged %d, failed %d (of %d)\n",
			summary.Succeeded, summary.Unchanged, summary.Failed, summary.Scanned)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error ingesting: %v\n", err)
		return err
	}

	if summary.Failed > 0 && !c.TolerateFailures && !deps.Config.TolerateFailures {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Scanned)
	}
	return nil
}
