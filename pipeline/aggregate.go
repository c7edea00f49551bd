package pipeline

import (
	"context"

	"github.com/julilatch/rs-api/model"
	"github.com/julilatch/rs-api/pkg/logger"
)

// Aggregate settles a document's per-image outcomes: successful table sets
// are flattened into one ordered list, failures are counted and their
// reasons logged. Aggregation itself never fails; a document with zero
// successful pages yields an empty table list.
func Aggregate(ctx context.Context, outcomes []Outcome[[]model.Table]) ([]model.Table, int) {
	tables := make([]model.Table, 0, len(outcomes))
	failed := 0

	for i, out := range outcomes {
		if !out.OK() {
			failed++
			logger.Warn(ctx, "page extraction failed",
				"page", i+1,
				"reason", out.Err,
			)
			continue
		}
		tables = append(tables, out.Value...)
	}

	if failed > 0 && failed == len(outcomes) && len(outcomes) > 0 {
		logger.Warn(ctx, "no page survived extraction", "pages", len(outcomes))
	}

	return tables, failed
}
