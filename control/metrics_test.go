// File: control/metrics_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/momentics/hioload-tcp/control"
)

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := control.NewMetrics(control.MetricsConfig{Registry: reg})

	m.ConnectionsActive.Inc()
	m.AcceptedTotal.Inc()
	m.AcceptedTotal.Inc()
	m.RejectedTotal.Inc()

	if got := testutil.ToFloat64(m.ConnectionsActive); got != 1 {
		t.Errorf("connections_active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AcceptedTotal); got != 2 {
		t.Errorf("connections_accepted_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RejectedTotal); got != 1 {
		t.Errorf("connections_rejected_total = %v, want 1", got)
	}
}

func TestDebugProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("answer", func() any { return 42 })

	state := dp.DumpState()
	if state["answer"] != 42 {
		t.Errorf("probe answer = %v, want 42", state["answer"])
	}
}
