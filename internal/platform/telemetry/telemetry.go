// Package telemetry collects the intake server's operational metrics and
// serves them in Prometheus text exposition format. Three instrument
// families: HTTP request latency histograms fed by the echo middleware,
// a submission counter fed by the intake service, and a report counter fed
// by the report service.
package telemetry

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Config identifies the running service in the build-info metric.
type Config struct {
	Service string
	Version string
	Env     string
}

// durationBuckets are the latency histogram boundaries in seconds.
var durationBuckets = []float64{
	0.005, 0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0,
}

// requestStats holds one (method, route, status) latency series.
type requestStats struct {
	count   int64
	sum     float64
	buckets []int64
}

func (r *requestStats) observe(seconds float64) {
	r.count++
	r.sum += seconds
	for i, b := range durationBuckets {
		if seconds <= b {
			r.buckets[i]++
		}
	}
}

// Metrics is the process-wide metrics registry. A single mutex guards all
// series; every instrument is a hot-path increment, never an allocation
// after the first observation of a label set.
type Metrics struct {
	cfg Config

	mu          sync.Mutex
	inFlight    int64
	requests    map[string]*requestStats // method|route|status
	submissions map[string]int64         // kind|outcome
	reports     map[string]int64         // kind|status
}

func New(cfg Config) *Metrics {
	if cfg.Service == "" {
		cfg.Service = "intake-server"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	return &Metrics{
		cfg:         cfg,
		requests:    make(map[string]*requestStats),
		submissions: make(map[string]int64),
		reports:     make(map[string]int64),
	}
}

// ---------------------------------------------------------------------------
// Pipeline instruments
// ---------------------------------------------------------------------------

// RecordSubmission counts one client submission by detected kind
// (provider_referral, family_inquiry, unknown) and outcome (accepted,
// rejected, error). Satisfies intake.Metrics.
func (m *Metrics) RecordSubmission(kind, outcome string) {
	m.mu.Lock()
	m.submissions[kind+"|"+outcome]++
	m.mu.Unlock()
}

// RecordReport counts one report generation by document kind
// (benefit_summary, soap_note) and result status. Satisfies report.Metrics.
func (m *Metrics) RecordReport(kind, status string) {
	m.mu.Lock()
	m.reports[kind+"|"+status]++
	m.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Readback (tests and introspection)
// ---------------------------------------------------------------------------

// SubmissionCount returns the current submission counter for a label pair.
func (m *Metrics) SubmissionCount(kind, outcome string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions[kind+"|"+outcome]
}

// ReportCount returns the current report counter for a label pair.
func (m *Metrics) ReportCount(kind, status string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports[kind+"|"+status]
}

// RequestCount returns the number of observed requests for a label set.
func (m *Metrics) RequestCount(method, route, status string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[method+"|"+route+"|"+status]
	if !ok {
		return 0
	}
	return r.count
}

// InFlight returns the number of requests currently being handled.
func (m *Metrics) InFlight() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// ---------------------------------------------------------------------------
// Echo middleware
// ---------------------------------------------------------------------------

// Middleware records request latency per (method, route pattern, status) and
// tracks the in-flight gauge. Routes are the echo patterns, not raw paths,
// so path parameters do not explode the label space.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.mu.Lock()
			m.inFlight++
			m.mu.Unlock()

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start).Seconds()

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			key := c.Request().Method + "|" + route + "|" +
				fmt.Sprintf("%d", c.Response().Status)

			m.mu.Lock()
			m.inFlight--
			r, ok := m.requests[key]
			if !ok {
				r = &requestStats{buckets: make([]int64, len(durationBuckets))}
				m.requests[key] = r
			}
			r.observe(elapsed)
			m.mu.Unlock()

			return err
		}
	}
}

// ---------------------------------------------------------------------------
// Prometheus exposition
// ---------------------------------------------------------------------------

// Handler serves the registry in Prometheus text format. Series are sorted
// by label so the output is stable across scrapes.
func (m *Metrics) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, m.render())
	}
}

func (m *Metrics) render() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder

	fmt.Fprintf(&b, "# HELP intake_build_info Build and deployment identity of the running server.\n")
	fmt.Fprintf(&b, "# TYPE intake_build_info gauge\n")
	fmt.Fprintf(&b, "intake_build_info{service=%q,version=%q,environment=%q} 1\n\n",
		m.cfg.Service, m.cfg.Version, m.cfg.Env)

	fmt.Fprintf(&b, "# HELP http_requests_in_flight Requests currently being handled.\n")
	fmt.Fprintf(&b, "# TYPE http_requests_in_flight gauge\n")
	fmt.Fprintf(&b, "http_requests_in_flight %d\n\n", m.inFlight)

	b.WriteString("# HELP http_request_duration_seconds Request latency by method, route, and status.\n")
	b.WriteString("# TYPE http_request_duration_seconds histogram\n")
	for _, key := range sortedKeys(m.requests) {
		parts := strings.SplitN(key, "|", 3)
		r := m.requests[key]
		labels := fmt.Sprintf("method=%q,route=%q,status=%q", parts[0], parts[1], parts[2])
		// observe fills buckets cumulatively, so counts print as-is.
		for i, boundary := range durationBuckets {
			fmt.Fprintf(&b, "http_request_duration_seconds_bucket{%s,le=\"%g\"} %d\n",
				labels, boundary, r.buckets[i])
		}
		fmt.Fprintf(&b, "http_request_duration_seconds_bucket{%s,le=\"+Inf\"} %d\n", labels, r.count)
		fmt.Fprintf(&b, "http_request_duration_seconds_sum{%s} %g\n", labels, r.sum)
		fmt.Fprintf(&b, "http_request_duration_seconds_count{%s} %d\n", labels, r.count)
	}
	b.WriteByte('\n')

	writeCounter(&b, "intake_submissions_total",
		"Client submissions by kind and outcome.", "kind", "outcome", m.submissions)
	writeCounter(&b, "intake_reports_total",
		"Generated reports by kind and status.", "kind", "status", m.reports)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help, label1, label2 string, series map[string]int64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s counter\n", name)
	for _, key := range sortedKeys(series) {
		parts := strings.SplitN(key, "|", 2)
		fmt.Fprintf(b, "%s{%s=%q,%s=%q} %d\n", name, label1, parts[0], label2, parts[1], series[key])
	}
	b.WriteByte('\n')
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
