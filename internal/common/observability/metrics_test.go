// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordJob(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs, err := newWithProvider(provider, "placement-workers-test")
	require.NoError(t, err)

	ctx := context.Background()
	obs.RecordJob(ctx, "compute-home-matches", StatusCompleted, 40*time.Millisecond)
	obs.RecordJob(ctx, "compute-home-matches", StatusCompleted, 60*time.Millisecond)
	obs.RecordJob(ctx, "compute-home-matches", StatusFailed, 5*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var counted map[string]int64
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "jobs.processed" {
			continue
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		counted = make(map[string]int64)
		for _, dp := range sum.DataPoints {
			status, _ := dp.Attributes.Value(attribute.Key("status"))
			counted[status.AsString()] = dp.Value
		}
	}

	assert.Equal(t, map[string]int64{StatusCompleted: 2, StatusFailed: 1}, counted)
	assert.NoError(t, obs.Shutdown(ctx))
}

func TestRecordJob_NilIsNoop(t *testing.T) {
	var obs *Observability
	obs.RecordJob(context.Background(), "compute-home-matches", StatusCompleted, time.Millisecond)
	assert.NoError(t, obs.Shutdown(context.Background()))
}
