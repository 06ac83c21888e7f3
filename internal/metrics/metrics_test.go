package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

func TestNewRegistersCollectors(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := New(registry)
	require.NoError(t, err)

	m.FramesCaptured.Inc()
	m.AcquireTimeouts.Inc()
	m.TargetLost.Inc()
	m.RecordMatch("matched")
	m.RecordOCRDuration(120 * time.Millisecond)
	m.StopTimeouts.WithLabelValues("capture").Inc()
	m.SetState("capturing", "searching", "capturing")

	assert.InDelta(t, 1, testutil.ToFloat64(m.FramesCaptured), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MatchesTotal.WithLabelValues("matched")), 0.001)
	assert.InDelta(t, 0, testutil.ToFloat64(m.StateGauge.WithLabelValues("searching")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StateGauge.WithLabelValues("capturing")), 0.001)

	// Double registration must fail.
	_, err = New(registry)
	assert.Error(t, err)
}

func TestNewEndpointRequiresEnabled(t *testing.T) {
	t.Parallel()

	_, err := NewEndpoint(conf.MetricsSettings{Enabled: false}, prometheus.NewRegistry(), logger.Discard())
	assert.Error(t, err)
}
