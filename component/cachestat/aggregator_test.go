package cachestat

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func scenarioSamples() []CacheSample {
	return []CacheSample{
		{Label: "app.users", Value: 1000000},
		{Label: "app.users (index: by_email)", Value: 200000},
	}
}

func TestAggregateUsedSum(t *testing.T) {
	t.Parallel()

	summary := Aggregate(scenarioSamples(), 2000000, DenominatorUsedSum)
	require.Equal(t, scenarioSamples(), summary.Samples)
	require.Equal(t, int64(1200000), summary.Denominator)
	require.Equal(t, int64(1200000), summary.UsedSum)
	require.Equal(t, int64(2000000), summary.TotalConfigured)
	require.Equal(t, DenominatorUsedSum, summary.Mode)
}

func TestAggregateConfiguredTotal(t *testing.T) {
	t.Parallel()

	summary := Aggregate(scenarioSamples(), 2000000, DenominatorConfiguredTotal)
	require.Equal(t, append(scenarioSamples(), CacheSample{Label: UnusedCacheLabel, Value: 800000}), summary.Samples)
	require.Equal(t, int64(2000000), summary.Denominator)
	require.Equal(t, int64(1200000), summary.UsedSum)

	// the samples partition the denominator
	var sum int64
	for _, s := range summary.Samples {
		sum += s.Value
	}
	require.Equal(t, summary.Denominator, sum)
}

func TestAggregateOverReported(t *testing.T) {
	t.Parallel()

	summary := Aggregate(scenarioSamples(), 1000000, DenominatorConfiguredTotal)
	require.Equal(t, scenarioSamples(), summary.Samples)
	require.Equal(t, int64(1000000), summary.Denominator)
	require.Equal(t, int64(1200000), summary.UsedSum)
}

func TestAggregateExactlyFull(t *testing.T) {
	t.Parallel()

	summary := Aggregate(scenarioSamples(), 1200000, DenominatorConfiguredTotal)
	require.Equal(t, scenarioSamples(), summary.Samples)
	require.Equal(t, int64(1200000), summary.Denominator)
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	summary := Aggregate(nil, 0, DenominatorUsedSum)
	require.Empty(t, summary.Samples)
	require.Equal(t, int64(0), summary.UsedSum)
	require.Equal(t, int64(0), summary.Denominator)

	summary = Aggregate(nil, 500, DenominatorConfiguredTotal)
	require.Equal(t, []CacheSample{{Label: UnusedCacheLabel, Value: 500}}, summary.Samples)
	require.Equal(t, int64(500), summary.Denominator)
	require.Equal(t, int64(0), summary.UsedSum)
}

func TestAggregateIdempotent(t *testing.T) {
	t.Parallel()

	input := scenarioSamples()
	for _, mode := range []DenominatorMode{DenominatorUsedSum, DenominatorConfiguredTotal} {
		first := Aggregate(input, 2000000, mode)
		second := Aggregate(input, 2000000, mode)
		require.Equal(t, first, second)
	}
	// the input is never modified
	require.Equal(t, scenarioSamples(), input)
}

func TestAggregateDoesNotAlias(t *testing.T) {
	t.Parallel()

	input := make([]CacheSample, 2, 8)
	copy(input, scenarioSamples())
	summary := Aggregate(input, 2000000, DenominatorConfiguredTotal)
	summary.Samples[0].Value = 1
	require.Equal(t, int64(1000000), input[0].Value)
	require.Len(t, input, 2)
	require.Equal(t, CacheSample{}, input[:3][2])
}

func TestAggregateUsedSumProperty(t *testing.T) {
	t.Parallel()

	var samples []CacheSample
	var expected int64
	for i := 0; i < 100; i++ {
		v := int64(i * 37 % 11)
		samples = append(samples, CacheSample{Label: "db.obj", Value: v})
		expected += v
		summary := Aggregate(samples, 0, DenominatorUsedSum)
		require.Equal(t, expected, summary.UsedSum)
		require.GreaterOrEqual(t, summary.UsedSum, int64(0))
	}
}

func TestUnknownModeFallsBackToUsedSum(t *testing.T) {
	t.Parallel()

	summary := Aggregate(scenarioSamples(), 2000000, DenominatorMode("bogus"))
	require.Equal(t, DenominatorUsedSum, summary.Mode)
	require.Equal(t, int64(1200000), summary.Denominator)
}

var labelRegexp = regexp.MustCompile(`^[^.]+\.[^ ]+( \(index: [^)]+\))?$`)

func requireLabelFormat(t *testing.T, samples []CacheSample) {
	for _, s := range samples {
		if s.Label == UnusedCacheLabel {
			continue
		}
		require.Regexp(t, labelRegexp, s.Label)
	}
}
