package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewStoreMetrics_Registers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newStoreMetricsWithRegisterer(registry)

	if m == nil {
		t.Fatal("newStoreMetricsWithRegisterer should not return nil")
	}

	m.RecordMutation("setRank", "ok")
	m.RecordRefresh("background", "error")
	m.RecordRefreshSuppressed("interaction")
	m.RecordGatewayCall("fetchOrders", 120*time.Millisecond)
	m.RecordSnapshotSize(7)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	want := map[string]bool{
		"partsdesk_store_mutations_total":         false,
		"partsdesk_store_refreshes_total":         false,
		"partsdesk_refresh_suppressed_total":      false,
		"partsdesk_gateway_call_duration_seconds": false,
		"partsdesk_snapshot_orders":               false,
	}
	for _, family := range families {
		if _, ok := want[family.GetName()]; ok {
			want[family.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s was not registered", name)
		}
	}
}

func TestNewStoreMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newStoreMetricsWithRegisterer(registry)
	second := newStoreMetricsWithRegisterer(registry)

	if first == nil || second == nil {
		t.Fatal("repeated construction must reuse existing collectors, not fail")
	}
	second.RecordMutation("approveOrder", "ok")
}

func TestStoreMetrics_NilSafe(t *testing.T) {
	var m *StoreMetrics

	// Не должно паниковать: тесты компонентов передают nil вместо метрик.
	m.RecordMutation("setRank", "ok")
	m.RecordRefresh("user", "ok")
	m.RecordRefreshSuppressed("busy")
	m.RecordGatewayCall("approveOrder", time.Second)
	m.RecordSnapshotSize(0)
}
