package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики reconciliation store и фонового обновления.
type StoreMetrics struct {
	// Счётчики мутаций по операции и результату.
	mutations *prometheus.CounterVec

	// Счётчики обновлений снапшота по типу (user/background) и результату.
	refreshes *prometheus.CounterVec

	// Счётчик подавленных фоновых обновлений.
	refreshSuppressed *prometheus.CounterVec

	// Гистограмма времени вызовов шлюза.
	gatewayDuration *prometheus.HistogramVec

	// Gauge размера локального снапшота.
	snapshotSize prometheus.Gauge
}

// NewStoreMetrics создаёт метрики на дефолтном registerer.
func NewStoreMetrics() *StoreMetrics {
	return newStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "partsdesk_store_mutations_total",
			Help: "Total number of store mutations grouped by operation and result",
		}, []string{"op", "result"}),
		refreshes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "partsdesk_store_refreshes_total",
			Help: "Total number of snapshot refreshes grouped by kind and result",
		}, []string{"kind", "result"}),
		refreshSuppressed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "partsdesk_refresh_suppressed_total",
			Help: "Total number of background refreshes skipped by a guard",
		}, []string{"reason"}),
		gatewayDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "partsdesk_gateway_call_duration_seconds",
			Help:    "Duration of order gateway calls in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"op"}),
		snapshotSize: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "partsdesk_snapshot_orders",
			Help: "Number of orders in the local snapshot",
		}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordMutation фиксирует исход мутации. Все методы безопасны при nil-получателе,
// чтобы тесты могли передавать nil вместо метрик.
func (m *StoreMetrics) RecordMutation(op, result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

// RecordRefresh фиксирует исход обновления снапшота.
func (m *StoreMetrics) RecordRefresh(kind, result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(kind, result).Inc()
}

// RecordRefreshSuppressed фиксирует подавленное фоновое обновление.
func (m *StoreMetrics) RecordRefreshSuppressed(reason string) {
	if m == nil {
		return
	}
	m.refreshSuppressed.WithLabelValues(reason).Inc()
}

// RecordGatewayCall записывает длительность вызова шлюза.
func (m *StoreMetrics) RecordGatewayCall(op string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordSnapshotSize обновляет размер снапшота.
func (m *StoreMetrics) RecordSnapshotSize(orders int) {
	if m == nil {
		return
	}
	m.snapshotSize.Set(float64(orders))
}
