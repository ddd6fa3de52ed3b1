package prometheus

import (
	"strconv"
	"time"
)

// Outcome labels shared by the parse counters.
const (
	StatusOK        = "ok"
	StatusViolation = "violation"
	StatusError     = "error"
)

// Source labels describe where a record came from.
const (
	SourceFile   = "file"
	SourceStdin  = "stdin"
	SourceHTTP   = "http"
	SourceObject = "object"
	SourceKafka  = "kafka"
)

var (
	// parseDurationBuckets covers single records (sub-millisecond) up to
	// large polymer entries.
	parseDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	atomCountBuckets     = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
	httpDurationBuckets  = []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5}
)

// AppMetrics is the metric bundle for parsing, caching, the worker and the
// HTTP surface.
type AppMetrics struct {
	// Parser
	RecordsParsedTotal CounterVec
	ParseDuration      HistogramVec
	AtomsPerRecord     HistogramVec
	RingsPerRecord     HistogramVec
	BatchesTotal       CounterVec
	BatchDuration      HistogramVec
	BatchInFlight      GaugeVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheErrorsTotal CounterVec

	// Worker
	WorkerMessagesTotal CounterVec
	WorkerDLQTotal      CounterVec

	// Model
	ModelStateLoadsTotal CounterVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPInFlight        GaugeVec
}

// NewAppMetrics registers every metric on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		RecordsParsedTotal: collector.RegisterCounter("records_parsed_total",
			"KCF records parsed, by source and outcome", "source", "status"),
		ParseDuration: collector.RegisterHistogram("parse_duration_seconds",
			"Time spent parsing one KCF record", parseDurationBuckets, "source"),
		AtomsPerRecord: collector.RegisterHistogram("atoms_per_record",
			"Atom count of successfully parsed records", atomCountBuckets),
		RingsPerRecord: collector.RegisterHistogram("rings_per_record",
			"SSSR ring count of successfully parsed records", atomCountBuckets),
		BatchesTotal: collector.RegisterCounter("batches_total",
			"Batches processed, by outcome", "status"),
		BatchDuration: collector.RegisterHistogram("batch_duration_seconds",
			"Wall time of a batch parse", nil),
		BatchInFlight: collector.RegisterGauge("batch_in_flight",
			"Records of running batches not yet finished"),

		CacheHitsTotal: collector.RegisterCounter("cache_hits_total",
			"Graph cache hits", "cache"),
		CacheMissesTotal: collector.RegisterCounter("cache_misses_total",
			"Graph cache misses", "cache"),
		CacheErrorsTotal: collector.RegisterCounter("cache_errors_total",
			"Graph cache backend errors", "cache", "op"),

		WorkerMessagesTotal: collector.RegisterCounter("worker_messages_total",
			"Messages handled by the parse worker", "topic", "status"),
		WorkerDLQTotal: collector.RegisterCounter("worker_dlq_total",
			"Messages routed to the dead letter topic", "topic"),

		ModelStateLoadsTotal: collector.RegisterCounter("model_state_loads_total",
			"Model state loads, by whether legacy names were translated", "translated", "status"),

		HTTPRequestsTotal: collector.RegisterCounter("http_requests_total",
			"HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency", httpDurationBuckets, "method", "path"),
		HTTPInFlight: collector.RegisterGauge("http_requests_in_flight",
			"HTTP requests being served"),
	}
}

// RecordParse records a single record parse. atoms and rings are only
// observed for successful parses.
func (m *AppMetrics) RecordParse(source, status string, d time.Duration, atoms, rings int) {
	m.RecordsParsedTotal.WithLabelValues(source, status).Inc()
	m.ParseDuration.WithLabelValues(source).Observe(d.Seconds())
	if status == StatusOK {
		m.AtomsPerRecord.WithLabelValues().Observe(float64(atoms))
		m.RingsPerRecord.WithLabelValues().Observe(float64(rings))
	}
}

func (m *AppMetrics) RecordBatch(status string, d time.Duration) {
	m.BatchesTotal.WithLabelValues(status).Inc()
	m.BatchDuration.WithLabelValues().Observe(d.Seconds())
}

// RecordCacheAccess increments the hit or miss counter of cache.
func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *AppMetrics) RecordCacheError(cache, op string) {
	m.CacheErrorsTotal.WithLabelValues(cache, op).Inc()
}

func (m *AppMetrics) RecordWorkerMessage(topic, status string) {
	m.WorkerMessagesTotal.WithLabelValues(topic, status).Inc()
}

func (m *AppMetrics) RecordDLQ(topic string) {
	m.WorkerDLQTotal.WithLabelValues(topic).Inc()
}

func (m *AppMetrics) RecordModelStateLoad(translated bool, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.ModelStateLoadsTotal.WithLabelValues(strconv.FormatBool(translated), status).Inc()
}

// RecordHTTPRequest records a finished HTTP request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

//Personal.AI order the ending
