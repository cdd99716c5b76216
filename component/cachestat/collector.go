package cachestat

import (
	"context"

	"github.com/pingcap/cache-monitoring/component/cachestat/source"

	"github.com/pingcap/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Collect returns the object's own sample followed by one sample per
// secondary index. An object without statistics yields no sample and no
// error.
func Collect(ctx context.Context, src source.StatSource, ref StorableObjectRef) ([]CacheSample, error) {
	stats, err := src.ObjectCacheStats(ctx, ref.Database, ref.Name)
	if err != nil {
		if errors.Is(err, source.ErrStatsUnavailable) {
			log.Debug("skip object without cache statistics",
				zap.String("object", ref.Label()),
				zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	samples := make([]CacheSample, 0, len(stats.Indexes)+1)
	samples = append(samples, CacheSample{Label: ref.Label(), Value: stats.InCacheBytes})
	for _, index := range stats.Indexes {
		samples = append(samples, CacheSample{Label: ref.indexLabel(index.Name), Value: index.InCacheBytes})
	}
	return samples, nil
}

// CollectAll collects refs with at most concurrency statistics calls in
// flight. The result is the concatenation of the per-object samples in refs
// order, whatever order the calls complete in.
func CollectAll(ctx context.Context, src source.StatSource, refs []StorableObjectRef, concurrency int) ([]CacheSample, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	perObject := make([][]CacheSample, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			samples, err := Collect(gctx, src, ref)
			if err != nil {
				return err
			}
			perObject[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, samples := range perObject {
		total += len(samples)
	}
	result := make([]CacheSample, 0, total)
	for _, samples := range perObject {
		result = append(result, samples...)
	}
	return result, nil
}
