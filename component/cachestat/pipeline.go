package cachestat

import (
	"context"

	"github.com/pingcap/cache-monitoring/component/cachestat/source"
)

type CycleOptions struct {
	Mode DenominatorMode
	// Concurrency bounds the statistics calls in flight. Values below 2
	// collect objects one by one while enumerating.
	Concurrency int
}

// Pipeline runs one collect and aggregate pass over a StatSource. It keeps
// no state between cycles.
type Pipeline struct {
	src source.StatSource
}

func NewPipeline(src source.StatSource) *Pipeline {
	return &Pipeline{src: src}
}

func (p *Pipeline) RunCycle(ctx context.Context, opts CycleOptions) (CacheSummary, error) {
	samples, err := p.collect(ctx, opts.Concurrency)
	if err != nil {
		return CacheSummary{}, err
	}
	// read every cycle, the maximum can be reconfigured on a live cluster
	totalConfigured, err := p.src.ClusterCacheConfig(ctx)
	if err != nil {
		return CacheSummary{}, err
	}
	return Aggregate(samples, totalConfigured, opts.Mode), nil
}

func (p *Pipeline) collect(ctx context.Context, concurrency int) ([]CacheSample, error) {
	if concurrency > 1 {
		refs, err := ListObjects(ctx, p.src)
		if err != nil {
			return nil, err
		}
		return CollectAll(ctx, p.src, refs, concurrency)
	}

	var samples []CacheSample
	err := Enumerate(ctx, p.src, func(ref StorableObjectRef) error {
		objSamples, err := Collect(ctx, p.src, ref)
		if err != nil {
			return err
		}
		samples = append(samples, objSamples...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}
