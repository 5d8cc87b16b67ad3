package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gonum.org/v1/gonum/spatial/r3"
)

func newTestReader() (*sdkmetric.ManualReader, Option) {
	reader := sdkmetric.NewManualReader()
	return reader, WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
}

// counterValue sums every data point of the named Int64 counter.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetrics_CountMergesAndPrunes(t *testing.T) {
	reader, opt := newTestReader()
	s := newTestSim(t, []BodySpec{
		circularThrough(t, meetPoint, normalPlus, testRadius, 0),
		circularThrough(t, meetPoint, normalMinus, testRadius, 0),
	}, opt, WithPruner(EscapePolicy{MaxEccentricity: 0.3}))

	require.Len(t, s.Advance(0), 1)

	assert.Equal(t, int64(1), counterValue(t, reader, "simulation.merges"))
	assert.Equal(t, int64(1), counterValue(t, reader, "simulation.bodies.pruned"))
	assert.Equal(t, int64(0), counterValue(t, reader, "simulation.merges.skipped"))
}

func TestMetrics_CountSkippedMerges(t *testing.T) {
	reader, opt := newTestReader()
	s := newTestSim(t, []BodySpec{
		circularThrough(t, meetPoint, normalPlus, testRadius, 0),
		circularThrough(t, meetPoint, r3.Scale(-1, normalPlus), testRadius, 0),
	}, opt)

	assert.Empty(t, s.Advance(0))
	assert.Empty(t, s.Advance(0))

	assert.Equal(t, int64(2), counterValue(t, reader, "simulation.merges.skipped"))
	assert.Equal(t, int64(0), counterValue(t, reader, "simulation.merges"))
}
