package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.ProbesSent == nil || m.RepliesMatched == nil || m.SlotsInUse == nil {
		t.Error("metrics left unregistered")
	}
}

func TestRecordCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.RecordSend("ICMP_ECHO")
	m.RecordSend("ICMP_ECHO")
	m.RecordReply("ICMP_ECHO", 0.012)
	m.RecordTimeout("ICMP_ECHO")
	m.RecordSendError()
	m.RecordDiscard()

	if got := testutil.ToFloat64(m.ProbesSent.WithLabelValues("ICMP_ECHO")); got != 2 {
		t.Errorf("ProbesSent = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RepliesMatched.WithLabelValues("ICMP_ECHO")); got != 1 {
		t.Errorf("RepliesMatched = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ProbeTimeouts.WithLabelValues("ICMP_ECHO")); got != 1 {
		t.Errorf("ProbeTimeouts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SendErrors); got != 1 {
		t.Errorf("SendErrors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PacketsDiscarded); got != 1 {
		t.Errorf("PacketsDiscarded = %v, want 1", got)
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default returned distinct instances")
	}
}
