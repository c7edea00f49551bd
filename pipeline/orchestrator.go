package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/julilatch/rs-api/model"
	"github.com/julilatch/rs-api/pkg/logger"
)

// Extractor recognizes tables on a single page image. Implementations must
// be safe for concurrent use; the pipeline issues up to one batch of calls
// at a time per document.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]model.Table, error)
}

// Rasterizer renders a document into per-page image buffers, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte) ([][]byte, error)
}

// FailureArchiver receives documents whose whole pipeline failed. Archival
// is best effort and must not return an error into the pipeline.
type FailureArchiver interface {
	ArchiveFailed(ctx context.Context, doc model.Document, reason error)
}

// Options tune the extraction pipeline.
type Options struct {
	// BatchSize is the number of page images extracted concurrently within
	// one batch. Batches run strictly one after another, so this bounds the
	// per-document pressure on the recognition service.
	BatchSize int
	// CallTimeout bounds a single extraction call. Zero disables the bound,
	// in which case a call that never settles stalls its batch.
	CallTimeout time.Duration
	// MaxInFlight caps extraction calls in flight across all documents of
	// all requests. Zero means unbounded.
	MaxInFlight int64
}

// Orchestrator drives the full extraction pipeline: rasterize, partition
// into batches, dispatch each batch concurrently, and aggregate surviving
// tables per document. Multiple documents run concurrently; the response
// preserves input order.
type Orchestrator struct {
	rasterizer Rasterizer
	extractor  Extractor
	archiver   FailureArchiver // optional
	opts       Options
	inflight   *semaphore.Weighted // nil when unbounded
}

// NewOrchestrator builds an orchestrator around the given collaborators.
// archiver may be nil when failed-document archival is disabled.
func NewOrchestrator(r Rasterizer, e Extractor, archiver FailureArchiver, opts Options) *Orchestrator {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}

	var inflight *semaphore.Weighted
	if opts.MaxInFlight > 0 {
		inflight = semaphore.NewWeighted(opts.MaxInFlight)
	}

	return &Orchestrator{
		rasterizer: r,
		extractor:  e,
		archiver:   archiver,
		opts:       opts,
		inflight:   inflight,
	}
}

// Process runs the per-document pipeline for every document concurrently
// and settles the results. A document whose pipeline fails is logged,
// handed to the failure archiver, and excluded from the response without
// affecting its siblings. Result order matches input order.
func (o *Orchestrator) Process(ctx context.Context, docs []model.Document) model.BatchResponse {
	outcomes := make([]Outcome[model.DocumentResult], len(docs))

	var g errgroup.Group
	for i, doc := range docs {
		g.Go(func() error {
			outcomes[i] = o.processDocument(ctx, doc)
			return nil
		})
	}
	g.Wait()

	results := make([]model.DocumentResult, 0, len(docs))
	for i, out := range outcomes {
		if !out.OK() {
			logger.Error(ctx, "document pipeline failed",
				"file", docs[i].Name,
				"reason", out.Err,
			)
			if o.archiver != nil {
				o.archiver.ArchiveFailed(ctx, docs[i], out.Err)
			}
			continue
		}
		results = append(results, out.Value)
	}

	return model.BatchResponse{Results: results}
}

// processDocument runs rasterize -> partition -> batches -> aggregate for
// one document.
func (o *Orchestrator) processDocument(ctx context.Context, doc model.Document) Outcome[model.DocumentResult] {
	pages, err := o.rasterizer.Rasterize(ctx, doc.Data)
	if err != nil {
		return Fail[model.DocumentResult](fmt.Errorf("rasterize %s: %w", doc.Name, err))
	}

	batches := Partition(pages, o.opts.BatchSize)
	outcomes := o.runBatches(ctx, doc.Name, batches)

	tables, failed := Aggregate(ctx, outcomes)
	if failed > 0 {
		logger.Warn(ctx, "document extracted with failed pages",
			"file", doc.Name,
			"pages", len(pages),
			"failed_pages", failed,
		)
	}

	return Succeed(model.DocumentResult{FileName: doc.Name, Tables: tables})
}

// runBatches dispatches batches strictly one at a time, in order. A batch
// always settles completely before the next one starts, no matter how many
// of its images failed; the flattened outcome sequence preserves global
// page order.
func (o *Orchestrator) runBatches(ctx context.Context, name string, batches [][][]byte) []Outcome[[]model.Table] {
	var outcomes []Outcome[[]model.Table]
	for i, batch := range batches {
		logger.Debug(ctx, "dispatching batch",
			"file", name,
			"batch", i+1,
			"total_batches", len(batches),
			"batch_size", len(batch),
		)
		outcomes = append(outcomes, o.dispatch(ctx, batch)...)
	}
	return outcomes
}

// dispatch fans one batch out to the extractor, one concurrent call per
// image, and collects one outcome per image in input order. A failed call
// lands in its own slot and never cancels or delays its siblings.
func (o *Orchestrator) dispatch(ctx context.Context, batch [][]byte) []Outcome[[]model.Table] {
	outcomes := make([]Outcome[[]model.Table], len(batch))

	var g errgroup.Group
	for i, image := range batch {
		g.Go(func() error {
			outcomes[i] = o.extractOne(ctx, image)
			return nil
		})
	}
	g.Wait()

	return outcomes
}

// extractOne performs a single extraction call under the global in-flight
// cap and per-call timeout.
func (o *Orchestrator) extractOne(ctx context.Context, image []byte) Outcome[[]model.Table] {
	if o.inflight != nil {
		if err := o.inflight.Acquire(ctx, 1); err != nil {
			return Fail[[]model.Table](fmt.Errorf("acquire extraction slot: %w", err))
		}
		defer o.inflight.Release(1)
	}

	callCtx := ctx
	if o.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
	}

	tables, err := o.extractor.Extract(callCtx, image)
	if err != nil {
		return Fail[[]model.Table](err)
	}
	return Succeed(tables)
}
