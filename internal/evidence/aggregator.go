// Package evidence gathers supporting material for a trial by fanning out to
// every configured source concurrently. One failing source degrades the
// bundle; it never fails the gather.
package evidence

import (
	"context"
	"sync"
	"time"

	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// Aggregator fans out to evidence sources and assembles a bundle.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an evidence aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// sourceResult is one source's outcome: items or an error, never both fatal.
type sourceResult struct {
	index int
	items []types.EvidenceItem
	err   error
}

// Gather invokes every source concurrently and returns the combined bundle.
// Rejected sources are logged and their items omitted; the bundle may
// legitimately be empty, which downstream stages treat as a data condition.
func (a *Aggregator) Gather(ctx context.Context, question string, sources []Source) *types.EvidenceBundle {
	start := time.Now()

	results := make([]sourceResult, len(sources))
	var wg sync.WaitGroup

	for i, source := range sources {
		wg.Add(1)
		go func(idx int, src Source) {
			defer wg.Done()

			items, err := src.Fetch(ctx, question)
			results[idx] = sourceResult{index: idx, items: items, err: err}
		}(i, source)
	}

	wg.Wait()

	bundle := &types.EvidenceBundle{
		GatheredAt: time.Now().UTC(),
	}

	for i, result := range results {
		if result.err != nil {
			a.logger.Warn("evidence-source-failed",
				zap.String("source", sources[i].Name()),
				zap.Error(result.err))
			SourceFailuresTotal.WithLabelValues(sources[i].Name()).Inc()
			continue
		}
		bundle.Items = append(bundle.Items, result.items...)
	}

	GatherDurationSeconds.Observe(time.Since(start).Seconds())
	BundleSizeItems.Observe(float64(len(bundle.Items)))

	a.logger.Info("evidence-gathered",
		zap.Int("sources", len(sources)),
		zap.Int("items", len(bundle.Items)),
		zap.Duration("elapsed", time.Since(start)))

	return bundle
}
