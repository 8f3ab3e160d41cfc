// Package metricsport defines the telemetry sink port spec.md §9 calls for:
// "progress" and "structured logs" are a port the core writes to, not
// something interleaved with control flow. Grounded on the teacher's
// ProgressTracker/WatchStats callback style (internal/indexing, FileWatcher
// GetStats), generalized into an injectable interface with a no-op default.
package metricsport

import "time"

// IndexProgress is a snapshot of indexer progress, mirroring the fields the
// teacher's ProgressTracker/IndexingProgress expose.
type IndexProgress struct {
	TotalFiles     int64
	ProcessedFiles int64
	Phase          string
	Elapsed        time.Duration
}

// VectorIndexMetrics is reported after a Vector Index Manager build or
// query, per spec.md §4.5 ("Metrics (build_ms, query_ms, size, backend) are
// exposed for observability").
type VectorIndexMetrics struct {
	BackendName string
	BuildMs     int64
	QueryMs     int64
	Size        int
	Degraded    bool
}

// Sink is a port for indexer, search, and vector index telemetry events.
// Implementations may forward to a metrics exporter, a log line, or
// discard. No component in this module currently calls a Sink.
type Sink interface {
	IndexProgress(p IndexProgress)
	VectorIndexBuilt(m VectorIndexMetrics)
	SearchQuery(query string, durationMs int64, degraded bool, reason string)
	CascadeInvalidation(path string, count int)
}

// NoopSink discards every event. It is the default sink so components never
// need a nil check.
type NoopSink struct{}

func (NoopSink) IndexProgress(IndexProgress)                             {}
func (NoopSink) VectorIndexBuilt(VectorIndexMetrics)                     {}
func (NoopSink) SearchQuery(query string, durationMs int64, degraded bool, reason string) {}
func (NoopSink) CascadeInvalidation(path string, count int)              {}

var _ Sink = NoopSink{}

// LoggingSink forwards every event to the logging facade at debug level —
// the teacher's own default behavior (debug.LogIndexing et al.) before a
// real metrics exporter is wired in by the caller.
type LoggingSink struct {
	log interface {
		Debug(msg string, args ...any)
	}
}

// NewLoggingSink builds a sink that logs through l.
func NewLoggingSink(l interface {
	Debug(msg string, args ...any)
}) LoggingSink {
	return LoggingSink{log: l}
}

func (s LoggingSink) IndexProgress(p IndexProgress) {
	s.log.Debug("index progress", "total", p.TotalFiles, "processed", p.ProcessedFiles, "phase", p.Phase)
}

func (s LoggingSink) VectorIndexBuilt(m VectorIndexMetrics) {
	s.log.Debug("vector index built", "backend", m.BackendName, "build_ms", m.BuildMs, "size", m.Size, "degraded", m.Degraded)
}

func (s LoggingSink) SearchQuery(query string, durationMs int64, degraded bool, reason string) {
	s.log.Debug("search query", "query", query, "duration_ms", durationMs, "degraded", degraded, "reason", reason)
}

func (s LoggingSink) CascadeInvalidation(path string, count int) {
	s.log.Debug("cascade invalidation", "path", path, "count", count)
}

var _ Sink = LoggingSink{}
