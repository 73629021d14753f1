package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/artpar/fieldmap/adapters/metrics"
	"github.com/artpar/fieldmap/domain/diag"
)

func TestNewWithRegistry(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.ExtractionsTotal == nil {
		t.Error("ExtractionsTotal is nil")
	}
	if m.FieldsTotal == nil {
		t.Error("FieldsTotal is nil")
	}
	if m.DiagnosticsTotal == nil {
		t.Error("DiagnosticsTotal is nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
}

func gatherSeries(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return len(f.GetMetric())
		}
	}
	return -1
}

func TestObserveExtraction(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveExtraction("user", 4, nil)
	m.ObserveExtraction("user", 2, diag.List{
		{Kind: diag.Reference, Container: "user", Field: "email"},
		{Kind: diag.Parse, Container: "user", Field: "age"},
	})
	m.ObserveExtraction("order", 1, nil)

	// clean and diagnostics outcomes for "user", clean for "order"
	if got := gatherSeries(t, reg, "fieldmap_extractions_total"); got != 3 {
		t.Errorf("extractions_total series = %d, want 3", got)
	}
	if got := gatherSeries(t, reg, "fieldmap_fields_total"); got != 2 {
		t.Errorf("fields_total series = %d, want 2", got)
	}
	// one reference, one parse
	if got := gatherSeries(t, reg, "fieldmap_diagnostics_total"); got != 2 {
		t.Errorf("diagnostics_total series = %d, want 2", got)
	}
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveRequest("GET", 200, 0.05)
	m.ObserveRequest("GET", 200, 0.1)
	m.ObserveRequest("POST", 502, 1.5)

	if got := gatherSeries(t, reg, "fieldmap_requests_total"); got != 2 {
		t.Errorf("requests_total series = %d, want 2", got)
	}
	if got := gatherSeries(t, reg, "fieldmap_request_duration_seconds"); got != 2 {
		t.Errorf("request_duration_seconds series = %d, want 2", got)
	}
}
