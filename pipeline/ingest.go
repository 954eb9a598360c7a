// Package pipeline provides batch ingestion orchestration.
// It scans a directory, extracts page text and entity mentions on a
// bounded worker pool and commits each document through a single writer.
package pipeline

import (
	"context"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/bloom"
	"golang.org/x/sync/errgroup"
)

// Default ingestion settings.
const (
	DefaultMaxFileBytes  = 200 << 20
	DefaultFalsePositive = 0.01
)

// Ingester runs the ingestion pipeline over a directory.
type Ingester struct {
	Source    evidex.FileSource
	Extractor evidex.TextExtractor
	Entities  evidex.EntityExtractor
	Assets    evidex.AssetRecognizer
	Index     evidex.IndexService
	Logger    *slog.Logger

	// Workers bounds concurrent extraction. Defaults to the CPU count.
	Workers int

	// Timeout bounds extraction and entity inference of one document.
	// Zero means no limit.
	Timeout time.Duration

	// MaxFileBytes is the largest file read. Larger files are recorded
	// FAILED with EINVALID. Defaults to DefaultMaxFileBytes.
	MaxFileBytes int64

	// ToolVersion tags committed documents. Documents stored under a
	// different tag are reprocessed.
	ToolVersion string

	// Filter holds committed (path, hash) pairs. When nil, one is built
	// from the index at the start of every run.
	Filter *bloom.Filter

	// RetryDelays are the waits between commit attempts that fail with
	// ECONFLICT. Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration
}

// Failure describes one document that could not be indexed.
type Failure struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Summary holds the per-file outcome counts of one run.
type Summary struct {
	Scanned   int       `json:"scanned"`
	Succeeded int       `json:"succeeded"`
	Unchanged int       `json:"unchanged"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

// ProgressEvent reports progress during an ingestion run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Path      string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressIndexed
	ProgressUnchanged
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting ingestion progress.
type ProgressFunc func(event ProgressEvent)

type outcome int

const (
	outcomeIndex outcome = iota
	outcomeUnchanged
	outcomeFailed
	outcomeCanceled
)

// ingestResult holds the outcome of processing a single file.
type ingestResult struct {
	outcome outcome
	doc     *evidex.Document
	req     *evidex.IndexRequest
	err     error
}

// Ingest processes every supported file under root. Documents are
// independent: a failed document is recorded FAILED and the run goes on.
// Only a fatal storage error or cancellation stops the run early, and is
// returned along with the counts so far.
func (in *Ingester) Ingest(ctx context.Context, root string, progress ProgressFunc) (*Summary, error) {
	files, err := in.Source.Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	filter := in.Filter
	if filter == nil {
		known, err := in.Index.KnownDocuments(ctx)
		if err != nil {
			return nil, err
		}
		filter = bloom.NewFilterFromKeys(known, DefaultFalsePositive)
	}
	in.logger().Debug("ingest started", "root", root, "files", len(files), "known", filter.EstimatedCount())

	workers := in.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	summary := &Summary{Scanned: len(files)}
	total := len(files)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Bounded so extraction cannot run far ahead of the committer.
	resultCh := make(chan ingestResult, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	go func() {
		for _, f := range files {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				result := in.process(gctx, f, filter)
				select {
				case resultCh <- result:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var completed atomic.Int64
	var fatal error
	for result := range resultCh {
		if fatal != nil || result.outcome == outcomeCanceled {
			continue
		}

		typ, err := in.commit(ctx, &result, filter, summary)
		if err != nil {
			fatal = err
			cancel()
			continue
		}

		completed.Add(1)
		if progress != nil {
			progress(ProgressEvent{
				Type:      typ,
				Completed: int(completed.Load()),
				Total:     total,
				Path:      result.doc.Path,
				Error:     result.err,
			})
		}
	}

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: int(completed.Load()), Total: total})
	}

	if fatal != nil {
		return summary, fatal
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// process reads, extracts and recognizes one file. It never writes.
func (in *Ingester) process(ctx context.Context, f *evidex.SourceFile, filter *bloom.Filter) ingestResult {
	doc := &evidex.Document{
		Path:        f.Path,
		MimeType:    f.MimeType,
		Kind:        f.Kind,
		ToolVersion: in.ToolVersion,
	}
	failed := func(err error) ingestResult {
		if ctx.Err() != nil {
			return ingestResult{outcome: outcomeCanceled, doc: doc}
		}
		return ingestResult{outcome: outcomeFailed, doc: doc, err: err}
	}

	if f.Kind == evidex.KindUnknown {
		return failed(evidex.Errorf(evidex.EUNSUPPORTED, "unsupported file type %q", path.Ext(f.Path)))
	}
	if limit := in.maxFileBytes(); f.Size > limit {
		return failed(evidex.Errorf(evidex.EINVALID, "file is %s, limit is %s", FormatBytes(f.Size), FormatBytes(limit)))
	}

	data, err := in.Source.ReadFile(ctx, f)
	if err != nil {
		return failed(err)
	}
	doc.ContentHash = ComputeHash(data)

	key := evidex.DocumentKey{Path: doc.Path, ContentHash: doc.ContentHash, ToolVersion: doc.ToolVersion}
	if filter.Test(key) {
		unchanged, err := in.Index.Unchanged(ctx, key)
		if err != nil {
			return failed(err)
		}
		if unchanged {
			return ingestResult{outcome: outcomeUnchanged, doc: doc}
		}
	}

	docCtx := ctx
	if in.Timeout > 0 {
		var cancel context.CancelFunc
		docCtx, cancel = context.WithTimeout(ctx, in.Timeout)
		defer cancel()
	}

	pages, err := in.Extractor.Extract(docCtx, data, f.Kind)
	if err != nil {
		return failed(err)
	}

	req := &evidex.IndexRequest{Document: doc, Pages: pages}
	if in.Entities != nil {
		for _, p := range pages {
			mentions, err := in.Entities.ExtractEntities(docCtx, p.Text)
			if err != nil {
				return failed(err)
			}
			for _, m := range mentions {
				req.Mentions = append(req.Mentions, evidex.PageMention{PageNumber: p.PageNumber, RawMention: m})
			}
		}
	}
	if in.Assets != nil {
		for _, p := range pages {
			assets, err := in.Assets.FindAssets(docCtx, p.Text)
			if err != nil {
				return failed(err)
			}
			for _, a := range assets {
				req.Assets = append(req.Assets, evidex.PageAsset{PageNumber: p.PageNumber, RawAsset: a})
			}
		}
	}
	return ingestResult{outcome: outcomeIndex, doc: doc, req: req}
}

// commit records one result. It runs on the single committer goroutine
// and returns an error only when the batch must stop.
func (in *Ingester) commit(ctx context.Context, result *ingestResult, filter *bloom.Filter, summary *Summary) (ProgressType, error) {
	switch result.outcome {
	case outcomeUnchanged:
		summary.Unchanged++
		return ProgressUnchanged, nil
	case outcomeFailed:
		if evidex.IsFatal(result.err) {
			return ProgressFailed, result.err
		}
		return ProgressFailed, in.markFailed(ctx, result, summary)
	}

	delays := in.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	outcome, err := applyWithRetry(ctx, func() (evidex.IndexOutcome, error) {
		return in.Index.Apply(ctx, result.req)
	}, delays)
	if err != nil {
		if evidex.IsFatal(err) || ctx.Err() != nil {
			return ProgressFailed, err
		}
		result.err = err
		return ProgressFailed, in.markFailed(ctx, result, summary)
	}

	filter.Add(evidex.DocumentKey{Path: result.doc.Path, ContentHash: result.doc.ContentHash})
	if outcome == evidex.OutcomeUnchanged {
		summary.Unchanged++
		return ProgressUnchanged, nil
	}
	summary.Succeeded++
	return ProgressIndexed, nil
}

func (in *Ingester) markFailed(ctx context.Context, result *ingestResult, summary *Summary) error {
	summary.Failed++
	summary.Failures = append(summary.Failures, Failure{
		Path:    result.doc.Path,
		Code:    evidex.ErrorCode(result.err),
		Message: failureMessage(result.err),
	})
	in.logger().Warn("document failed", "path", result.doc.Path, "error", result.err)

	if err := in.Index.MarkFailed(ctx, result.doc, result.err); err != nil {
		if evidex.IsFatal(err) || ctx.Err() != nil {
			return err
		}
		in.logger().Error("record failure", "path", result.doc.Path, "error", err)
	}
	return nil
}

func (in *Ingester) maxFileBytes() int64 {
	if in.MaxFileBytes > 0 {
		return in.MaxFileBytes
	}
	return DefaultMaxFileBytes
}

func (in *Ingester) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.Default()
}

func failureMessage(err error) string {
	if evidex.ErrorCode(err) == evidex.EINTERNAL {
		return err.Error()
	}
	return evidex.ErrorMessage(err)
}
