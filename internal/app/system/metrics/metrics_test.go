package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

// counterValue gathers the registry and returns the value of the counter
// family name whose labels include all of want.
func counterValue(t *testing.T, m *Metrics, name string, want map[string]string) float64 {
	t.Helper()
	mfs, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestLedgerTransitions(t *testing.T) {
	m := New()
	m.LedgerTransitions.WithLabelValues("presence", OutcomeApplied).Inc()
	m.LedgerTransitions.WithLabelValues("presence", OutcomeApplied).Inc()
	m.LedgerTransitions.WithLabelValues("paid", OutcomeBlocked).Inc()

	name := "tutorhub_ledger_transitions_total"
	if got := counterValue(t, m, name, map[string]string{"op": "presence", "outcome": OutcomeApplied}); got != 2 {
		t.Errorf("presence/applied = %v, want 2", got)
	}
	if got := counterValue(t, m, name, map[string]string{"op": "paid", "outcome": OutcomeBlocked}); got != 1 {
		t.Errorf("paid/blocked = %v, want 1", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.UnknownFees.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "tutorhub_ledger_unknown_fee_lookups_total 1") {
		t.Errorf("expected unknown fee counter in output")
	}
}
