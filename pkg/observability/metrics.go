package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Engine metrics
	modeSwitchesTotal    *prometheus.CounterVec
	frameSelectionsTotal *prometheus.CounterVec
	dragCommitsTotal     *prometheus.CounterVec
	activeTweens         prometheus.Gauge

	// Store metrics
	storeMutationsTotal *prometheus.CounterVec
	storeImportsTotal   *prometheus.CounterVec
	storeEntities       prometheus.Gauge

	// Persistence metrics
	persistOpsTotal  *prometheus.CounterVec
	persistDuration  *prometheus.HistogramVec
	persistSizeBytes *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.modeSwitchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardspace_mode_switches_total",
			Help: "Total number of arrangement mode switches",
		},
		[]string{"mode"},
	)

	m.frameSelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardspace_frame_selections_total",
			Help: "Total number of frame selections",
		},
		[]string{"result"}, // result: resolved, miss
	)

	m.dragCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardspace_drag_commits_total",
			Help: "Total number of drag position commits",
		},
		[]string{"target"}, // target: slot, override, skipped
	)

	m.activeTweens = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cardspace_active_tweens",
		Help: "Number of tweens running after the last tick",
	})

	m.storeMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardspace_store_mutations_total",
			Help: "Total number of entity store mutations",
		},
		[]string{"op"},
	)

	m.storeImportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardspace_store_imports_total",
			Help: "Total number of dataset imports",
		},
		[]string{"status"},
	)

	m.storeEntities = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cardspace_store_entities",
		Help: "Number of entities in the store",
	})

	m.persistOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardspace_persist_operations_total",
			Help: "Total number of persistence operations",
		},
		[]string{"backend", "op", "status"},
	)

	m.persistDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "cardspace_persist_duration_seconds",
			Help: "Time taken by persistence operations",
			// 1ms to ~1s
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"backend", "op"},
	)

	m.persistSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardspace_persist_size_bytes",
			Help:    "Size of saved datasets",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"backend"},
	)
}

// Install registers m as the engine, store and persistence hooks.
func (m *Metrics) Install() {
	SetEngineHooks(m)
	SetStoreHooks(m)
	SetPersistHooks(m)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.modeSwitchesTotal.Describe(ch)
	m.frameSelectionsTotal.Describe(ch)
	m.dragCommitsTotal.Describe(ch)
	m.activeTweens.Describe(ch)
	m.storeMutationsTotal.Describe(ch)
	m.storeImportsTotal.Describe(ch)
	m.storeEntities.Describe(ch)
	m.persistOpsTotal.Describe(ch)
	m.persistDuration.Describe(ch)
	m.persistSizeBytes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.modeSwitchesTotal.Collect(ch)
	m.frameSelectionsTotal.Collect(ch)
	m.dragCommitsTotal.Collect(ch)
	m.activeTweens.Collect(ch)
	m.storeMutationsTotal.Collect(ch)
	m.storeImportsTotal.Collect(ch)
	m.storeEntities.Collect(ch)
	m.persistOpsTotal.Collect(ch)
	m.persistDuration.Collect(ch)
	m.persistSizeBytes.Collect(ch)
}

// =============================================================================
// Hook implementations
// =============================================================================

func (m *Metrics) OnModeSwitch(mode string) {
	m.modeSwitchesTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) OnFrameSelect(_ string, resolved bool) {
	result := "miss"
	if resolved {
		result = "resolved"
	}
	m.frameSelectionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) OnDragCommit(target string) {
	m.dragCommitsTotal.WithLabelValues(target).Inc()
}

func (m *Metrics) OnTweens(active int) {
	m.activeTweens.Set(float64(active))
}

func (m *Metrics) OnMutation(op string, entities int) {
	m.storeMutationsTotal.WithLabelValues(op).Inc()
	m.storeEntities.Set(float64(entities))
}

func (m *Metrics) OnImport(entities int, err error) {
	if err != nil {
		m.storeImportsTotal.WithLabelValues("error").Inc()
		return
	}
	m.storeImportsTotal.WithLabelValues("success").Inc()
	m.storeEntities.Set(float64(entities))
}

func (m *Metrics) OnSave(_ context.Context, backend string, size int, duration time.Duration, err error) {
	m.persistOpsTotal.WithLabelValues(backend, "save", status(err)).Inc()
	m.persistDuration.WithLabelValues(backend, "save").Observe(duration.Seconds())
	if err == nil {
		m.persistSizeBytes.WithLabelValues(backend).Observe(float64(size))
	}
}

func (m *Metrics) OnLoad(_ context.Context, backend string, hit bool, duration time.Duration, err error) {
	st := status(err)
	if err == nil && !hit {
		st = "miss"
	}
	m.persistOpsTotal.WithLabelValues(backend, "load", st).Inc()
	m.persistDuration.WithLabelValues(backend, "load").Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var (
	_ EngineHooks  = (*Metrics)(nil)
	_ StoreHooks   = (*Metrics)(nil)
	_ PersistHooks = (*Metrics)(nil)
)
