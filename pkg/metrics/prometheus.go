package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Family phases used as label values.
const (
	PhaseTrunk   = "trunk"
	PhaseSpouse  = "spouse"
	PhaseParents = "parents"
)

// Manager manages all Prometheus metrics for a generator run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Generation Metrics
	peopleGenerated     prometheus.Counter
	familiesGenerated   *prometheus.CounterVec
	forcedMaleChildren  prometheus.Counter
	expansionPasses     prometheus.Counter
	saturatedBuilds     prometheus.Counter
	generationDuration  prometheus.Histogram
	treePeople          prometheus.Gauge
	treeFamilies        prometheus.Gauge
	trunkGenerations    prometheus.Gauge
	targetPopulation    prometheus.Gauge
	nameTableRows       *prometheus.GaugeVec
	nameTableLoadTime   *prometheus.HistogramVec
	recordsWritten      *prometheus.CounterVec
	serializeDuration   prometheus.Histogram
	errorsByComponent   *prometheus.CounterVec
	lastRunUnixSeconds  prometheus.Gauge
	lastRunSeed         prometheus.Gauge
	lastRunOutputBytes  prometheus.Gauge
	lastRunSuccessState prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gedgen",
		subsystem:        "generator",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.peopleGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "people_generated_total",
		Help:        "Total number of people created",
		ConstLabels: labels,
	})

	m.familiesGenerated = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "families_generated_total",
			Help:        "Total number of families created by build phase",
			ConstLabels: labels,
		},
		[]string{"phase"},
	)

	m.forcedMaleChildren = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "forced_male_children_total",
		Help:        "Children whose sex was forced to keep the trunk alive",
		ConstLabels: labels,
	})

	m.expansionPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "expansion_passes_total",
		Help:        "Total number of sub-branch expansion passes",
		ConstLabels: labels,
	})

	m.saturatedBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "saturated_builds_total",
		Help:        "Builds that stopped before the target because no person could be extended",
		ConstLabels: labels,
	})

	m.generationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "generation_duration_seconds",
		Help:        "Time spent building a tree",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.treePeople = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tree_people",
		Help:        "Number of people in the last generated tree",
		ConstLabels: labels,
	})

	m.treeFamilies = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tree_families",
		Help:        "Number of families in the last generated tree",
		ConstLabels: labels,
	})

	m.trunkGenerations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "trunk_generations",
		Help:        "Number of generations along the trunk of the last tree",
		ConstLabels: labels,
	})

	m.targetPopulation = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "target_population",
		Help:        "Requested population of the last run",
		ConstLabels: labels,
	})

	// Reference data
	m.nameTableRows = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "name_table_rows",
			Help:        "Rows loaded per name table",
			ConstLabels: labels,
		},
		[]string{"table"},
	)

	m.nameTableLoadTime = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "name_table_load_seconds",
			Help:        "Time spent reading a name table",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"table"},
	)

	// Serialization
	m.recordsWritten = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "records_written_total",
			Help:        "Level zero records written by kind",
			ConstLabels: labels,
		},
		[]string{"kind"},
	)

	m.serializeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "serialize_duration_seconds",
		Help:        "Time spent writing the output file",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_component_total",
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	// Run summary
	m.lastRunUnixSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_unix_seconds",
		Help:        "Unix timestamp of the last finished run",
		ConstLabels: labels,
	})

	m.lastRunSeed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_seed",
		Help:        "Random seed used by the last run",
		ConstLabels: labels,
	})

	m.lastRunOutputBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_output_bytes",
		Help:        "Bytes written by the last run",
		ConstLabels: labels,
	})

	m.lastRunSuccessState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_success",
		Help:        "1 when the last run finished without error, 0 otherwise",
		ConstLabels: labels,
	})
}

// RecordPeopleGenerated adds n to the people counter.
func RecordPeopleGenerated(n int) {
	globalManager.peopleGenerated.Add(float64(n))
}

// RecordFamilyGenerated increments the family counter for a build phase.
func RecordFamilyGenerated(phase string) {
	globalManager.familiesGenerated.WithLabelValues(phase).Inc()
}

// RecordForcedMaleChild increments the forced sex counter.
func RecordForcedMaleChild() {
	globalManager.forcedMaleChildren.Inc()
}

// RecordExpansionPass increments the expansion pass counter.
func RecordExpansionPass() {
	globalManager.expansionPasses.Inc()
}

// RecordSaturatedBuild increments the saturated build counter.
func RecordSaturatedBuild() {
	globalManager.saturatedBuilds.Inc()
}

// RecordGenerationDuration records build time in seconds.
func RecordGenerationDuration(seconds float64) {
	globalManager.generationDuration.Observe(seconds)
}

// UpdateTreeSize sets the people and family gauges.
func UpdateTreeSize(people, families int) {
	globalManager.treePeople.Set(float64(people))
	globalManager.treeFamilies.Set(float64(families))
}

// UpdateTrunkGenerations sets the trunk depth gauge.
func UpdateTrunkGenerations(n int) {
	globalManager.trunkGenerations.Set(float64(n))
}

// UpdateTargetPopulation sets the requested population gauge.
func UpdateTargetPopulation(n int) {
	globalManager.targetPopulation.Set(float64(n))
}

// Reference Data Functions.

// UpdateNameTableRows sets the row count for a table.
func UpdateNameTableRows(table string, rows int) {
	globalManager.nameTableRows.WithLabelValues(table).Set(float64(rows))
}

// RecordNameTableLoad records how long a table took to read.
func RecordNameTableLoad(table string, seconds float64) {
	globalManager.nameTableLoadTime.WithLabelValues(table).Observe(seconds)
}

// Serialization Functions.

// RecordRecordsWritten adds n records of a kind.
func RecordRecordsWritten(kind string, n int) {
	globalManager.recordsWritten.WithLabelValues(kind).Add(float64(n))
}

// RecordSerializeDuration records output time in seconds.
func RecordSerializeDuration(seconds float64) {
	globalManager.serializeDuration.Observe(seconds)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Run Summary Functions.

// UpdateLastRun stores the summary of a finished run.
func UpdateLastRun(unixSeconds int64, seed int64, outputBytes int64, success bool) {
	globalManager.lastRunUnixSeconds.Set(float64(unixSeconds))
	globalManager.lastRunSeed.Set(float64(seed))
	globalManager.lastRunOutputBytes.Set(float64(outputBytes))
	if success {
		globalManager.lastRunSuccessState.Set(1)
	} else {
		globalManager.lastRunSuccessState.Set(0)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return nil
}
