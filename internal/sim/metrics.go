package sim

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tomz197/accretion/internal/sim"

// metrics counts merge outcomes. The provider defaults to the global one,
// which is a no-op unless a provider has been installed.
type metrics struct {
	merges  metric.Int64Counter
	skipped metric.Int64Counter
	pruned  metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(instrumentationName)
	var (
		out metrics
		err error
	)

	out.merges, err = m.Int64Counter(
		"simulation.merges",
		metric.WithDescription("Total body merges committed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating merges counter: %w", err)
	}

	out.skipped, err = m.Int64Counter(
		"simulation.merges.skipped",
		metric.WithDescription("Colliding pairs left unmerged because no bound orbit exists"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	out.pruned, err = m.Int64Counter(
		"simulation.bodies.pruned",
		metric.WithDescription("Merged bodies removed by the prune policy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pruned counter: %w", err)
	}

	return &out, nil
}

func (m *metrics) addMerge()   { m.merges.Add(context.Background(), 1) }
func (m *metrics) addSkipped() { m.skipped.Add(context.Background(), 1) }
func (m *metrics) addPruned()  { m.pruned.Add(context.Background(), 1) }
