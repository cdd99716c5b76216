package cachestat

// Aggregate builds the summary of one cycle. It is a pure function of its
// arguments.
//
// In DenominatorConfiguredTotal mode the unused part of the configured cache
// is appended as a last UnusedCacheLabel sample, so the sample values add up
// to the denominator. When the engine reports more used bytes than its
// configured maximum nothing is appended and the denominator is smaller than
// the used sum.
func Aggregate(samples []CacheSample, totalConfigured int64, mode DenominatorMode) CacheSummary {
	var usedSum int64
	for _, s := range samples {
		usedSum += s.Value
	}

	out := make([]CacheSample, len(samples), len(samples)+1)
	copy(out, samples)

	summary := CacheSummary{
		UsedSum:         usedSum,
		TotalConfigured: totalConfigured,
		Mode:            mode,
	}
	switch mode {
	case DenominatorConfiguredTotal:
		summary.Denominator = totalConfigured
		if unused := totalConfigured - usedSum; unused > 0 {
			out = append(out, CacheSample{Label: UnusedCacheLabel, Value: unused})
		}
	default:
		summary.Mode = DenominatorUsedSum
		summary.Denominator = usedSum
	}
	summary.Samples = out
	return summary
}
