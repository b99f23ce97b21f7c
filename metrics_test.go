package winloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsNilReceiver(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.addIteration()
	m.addWindowEvent()
	m.addDeviceEvent()
	m.addUserEvent()
	m.addRedrawDispatched()
	m.addRedrawCoalesced()
	m.addWakeCoalesced()
	m.addSpuriousWake()

	assert.Equal(t, MetricsSnapshot{}, m.snapshot(), "nil metrics must read as zero")
}

func TestMetricsSnapshot(t *testing.T) {
	t.Parallel()

	m := &Metrics{}
	m.addIteration()
	m.addIteration()
	m.addWindowEvent()
	m.addDeviceEvent()
	m.addUserEvent()
	m.addRedrawDispatched()
	m.addRedrawCoalesced()
	m.addWakeCoalesced()
	m.addSpuriousWake()

	assert.Equal(t, MetricsSnapshot{
		Iterations:        2,
		WindowEvents:      1,
		DeviceEvents:      1,
		UserEvents:        1,
		RedrawsDispatched: 1,
		RedrawsCoalesced:  1,
		WakesCoalesced:    1,
		SpuriousWakes:     1,
	}, m.snapshot())
}
