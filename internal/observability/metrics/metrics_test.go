package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEmailDeliveryCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, Config{ServiceName: "teamspace", Environment: "test"})

	m.IncEmailDelivery("invite_member", EmailStatusSent)
	m.IncEmailDelivery("invite_member", EmailStatusSent)
	m.IncEmailDelivery("invite_member", EmailStatusFailed)

	sent := testutil.ToFloat64(m.emailDeliveries.WithLabelValues("invite_member", EmailStatusSent))
	if sent != 2 {
		t.Fatalf("sent = %v, want 2", sent)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.IncHTTPRequest("GET", "/health", "200")
	m.ObserveHTTPDuration("GET", "/health", time.Millisecond)
	m.IncEmailDelivery("invite_member", EmailStatusDropped)
	m.IncEmailRetry()
}
