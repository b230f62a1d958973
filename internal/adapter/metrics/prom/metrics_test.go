package prommetrics

import (
	"testing"

	"rewardcore/internal/domain/fulfillment"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.RecordOpened()
	m.RecordOpened()
	m.RecordConflict()
	m.RecordClaim(true)
	m.RecordClaim(false)
	m.RecordClaim(true)
	m.ContainerResolved("daily", "Chest", fulfillment.RuleItemPreference)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessions.WithLabelValues("opened")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("conflict")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.claims.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claims.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("item_preference", "Chest")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestMustNewMetrics_PanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustNewMetrics(reg)
	assert.Panics(t, func() { MustNewMetrics(reg) })
}
