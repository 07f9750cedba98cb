package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/pricewatch/metrics"
)

func Test_New(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.CacheLookups.WithLabelValues("hit").Inc()
	m.CacheLookups.WithLabelValues("hit").Inc()
	m.LayoutDrifts.Inc()

	require.InDelta(t, 2, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.LayoutDrifts), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	// Registering twice on the same registry must fail loudly.
	require.Panics(t, func() { metrics.New(reg) })
}
