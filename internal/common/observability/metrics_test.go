// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObservability(t *testing.T) (*Observability, *prometheus.Registry, *tracetest.SpanRecorder) {
	t.Helper()
	reg := prometheus.NewRegistry()
	recorder := tracetest.NewSpanRecorder()

	obs, err := New("fragrance-finder-test", WithRegisterer(reg), WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })
	return obs, reg, recorder
}

func metricNames(t *testing.T, reg *prometheus.Registry) []string {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names
}

func TestObservability_RecordsMetrics(t *testing.T) {
	obs, reg, _ := newTestObservability(t)
	ctx := context.Background()

	obs.RecordJob(ctx, "score-fragrances", "completed", 12*time.Millisecond)
	obs.RecordRequest(ctx, "/api/get-matching-fragrances", 200, 3*time.Millisecond)

	joined := strings.Join(metricNames(t, reg), ",")
	assert.Contains(t, joined, "jobs_processed")
	assert.Contains(t, joined, "http_requests")
}

func TestObservability_StartSpan(t *testing.T) {
	obs, _, recorder := newTestObservability(t)

	ctx, parent := obs.StartSpan(context.Background(), "job", attribute.String("taskType", "save-email"))
	_, child := obs.StartSpan(ctx, "db.update")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "db.update", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[1].Attributes(), attribute.String("taskType", "save-email"))
}
