package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("invoice-complete", 250*time.Millisecond)
	m.IncSuccess("invoice-complete")
	m.IncSuccess("invoice-complete")
	m.IncFailure("invoice-complete")

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, family := range families {
		byName[family.GetName()] = family
	}

	runs, ok := byName["paintmart_cron_job_runs_total"]
	require.True(t, ok, "runs counter not registered")

	counts := map[string]float64{}
	for _, metric := range runs.GetMetric() {
		var outcome string
		for _, label := range metric.GetLabel() {
			if label.GetName() == "outcome" {
				outcome = label.GetValue()
			}
		}
		counts[outcome] = metric.GetCounter().GetValue()
	}
	require.Equal(t, float64(2), counts["success"])
	require.Equal(t, float64(1), counts["failure"])

	_, ok = byName["paintmart_cron_job_duration_seconds"]
	require.True(t, ok, "duration histogram not registered")
}

func TestCronJobMetricsNoopWithoutRegisterer(t *testing.T) {
	m := NewCronJobMetrics(nil)

	require.NotPanics(t, func() {
		m.ObserveDuration("", time.Second)
		m.IncSuccess("")
		m.IncFailure("anything")
	})

	var nilMetrics *CronJobMetrics
	require.NotPanics(t, func() {
		nilMetrics.IncSuccess("job")
	})
}
