// Per-verb call counters and a ping-RTT histogram, wired directly onto each
// of the six protocol verbs rather than a per-connection byte counter,
// since the HTTP/JSON and in-process backends own their own connections.
package node

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// verbMetrics holds one meter per protocol verb and a histogram of observed
// ping round-trip times, in a registry private to this node (not the
// go-metrics DefaultRegistry) so that multiple nodes in the same process —
// as the test harness instantiates for scenario tests — don't collide on
// metric names.
type verbMetrics struct {
	registry gometrics.Registry

	greet    gometrics.Meter
	ping     gometrics.Meter
	discover gometrics.Meter
	locate   gometrics.Meter
	upload   gometrics.Meter
	download gometrics.Meter
	pingRTT  gometrics.Histogram
}

func newVerbMetrics() *verbMetrics {
	m := &verbMetrics{
		registry: gometrics.NewRegistry(),
		greet:    gometrics.NewMeter(),
		ping:     gometrics.NewMeter(),
		discover: gometrics.NewMeter(),
		locate:   gometrics.NewMeter(),
		upload:   gometrics.NewMeter(),
		download: gometrics.NewMeter(),
		pingRTT:  gometrics.NewHistogram(gometrics.NewUniformSample(256)),
	}
	m.registry.Register("node/greet", m.greet)
	m.registry.Register("node/ping", m.ping)
	m.registry.Register("node/discover", m.discover)
	m.registry.Register("node/locate", m.locate)
	m.registry.Register("node/upload", m.upload)
	m.registry.Register("node/download", m.download)
	m.registry.Register("node/ping_rtt_ms", m.pingRTT)
	return m
}

func (m *verbMetrics) observePingRTT(d time.Duration) {
	m.pingRTT.Update(d.Milliseconds())
}
