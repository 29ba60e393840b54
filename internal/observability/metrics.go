package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/gorm"

	"github.com/yungbote/learnqueue-backend/internal/platform/envutil"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

const meterName = "github.com/yungbote/learnqueue-backend"

var (
	latencyBuckets   = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	aggregateBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
)

// Metrics records service metrics on OpenTelemetry instruments and renders them in the
// Prometheus text format from a manual reader.
type Metrics struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	apiRequests  metric.Int64Counter
	apiLatency   metric.Float64Histogram
	apiInflight  metric.Int64UpDownCounter
	aggOps       metric.Int64Counter
	aggLatency   metric.Float64Histogram
	aggConflicts metric.Int64Counter
	aggRetries   metric.Int64Counter
	catalogCache metric.Int64Counter
	attempts     metric.Int64Counter
	events       metric.Int64Counter

	mu         sync.Mutex
	registered []metric.Registration
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once. It returns nil when METRICS_ENABLED is off;
// every Metrics method is a no-op on a nil receiver.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		m, err := New()
		if err != nil {
			if log != nil {
				log.Error("metrics init failed", "error", err)
			}
			return
		}
		instance = m
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// New builds an isolated Metrics with its own meter provider.
func New() (*Metrics, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter(meterName)
	m := &Metrics{reader: reader, provider: provider, meter: meter}

	var err error
	if m.apiRequests, err = meter.Int64Counter("lq_api_requests_total",
		metric.WithDescription("Total API requests by method/route/status.")); err != nil {
		return nil, err
	}
	if m.apiLatency, err = meter.Float64Histogram("lq_api_request_duration_seconds",
		metric.WithDescription("API request latency in seconds by method/route/status."),
		metric.WithExplicitBucketBoundaries(latencyBuckets...)); err != nil {
		return nil, err
	}
	if m.apiInflight, err = meter.Int64UpDownCounter("lq_api_inflight_requests",
		metric.WithDescription("In-flight API requests.")); err != nil {
		return nil, err
	}
	if m.aggOps, err = meter.Int64Counter("lq_aggregate_operations_total",
		metric.WithDescription("Aggregate operations by op/status.")); err != nil {
		return nil, err
	}
	if m.aggLatency, err = meter.Float64Histogram("lq_aggregate_operation_duration_seconds",
		metric.WithDescription("Aggregate operation duration in seconds by op/status."),
		metric.WithExplicitBucketBoundaries(aggregateBuckets...)); err != nil {
		return nil, err
	}
	if m.aggConflicts, err = meter.Int64Counter("lq_aggregate_conflicts_total",
		metric.WithDescription("Store conflicts observed by aggregate op.")); err != nil {
		return nil, err
	}
	if m.aggRetries, err = meter.Int64Counter("lq_aggregate_retries_total",
		metric.WithDescription("Local transaction retries by aggregate op.")); err != nil {
		return nil, err
	}
	if m.catalogCache, err = meter.Int64Counter("lq_catalog_cache_lookups_total",
		metric.WithDescription("Task catalog cache lookups by op/result.")); err != nil {
		return nil, err
	}
	if m.attempts, err = meter.Int64Counter("lq_attempts_total",
		metric.WithDescription("Recorded attempts by outcome.")); err != nil {
		return nil, err
	}
	if m.events, err = meter.Int64Counter("lq_learning_events_total",
		metric.WithDescription("Learning events published by event/status.")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	for _, reg := range m.registered {
		_ = reg.Unregister()
	}
	m.registered = nil
	m.mu.Unlock()
	return m.provider.Shutdown(ctx)
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", orDefault(method, "UNKNOWN")),
		attribute.String("route", orDefault(route, "unknown")),
		attribute.String("status", orDefault(status, "0")),
	)
	ctx := context.Background()
	m.apiRequests.Add(ctx, 1, attrs)
	m.apiLatency.Record(ctx, dur.Seconds(), attrs)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(context.Background(), 1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(context.Background(), -1)
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("op", orDefault(op, "unknown")),
		attribute.String("status", orDefault(status, "unknown")),
	)
	ctx := context.Background()
	m.aggOps.Add(ctx, 1, attrs)
	m.aggLatency.Record(ctx, dur.Seconds(), attrs)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggConflicts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", orDefault(op, "unknown"))))
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggRetries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", orDefault(op, "unknown"))))
}

func (m *Metrics) ObserveCatalogCache(op string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.catalogCache.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("op", orDefault(op, "unknown")),
		attribute.String("result", result),
	))
}

// ObserveAttempt counts a recorded attempt. credited marks the first first-try solve.
func (m *Metrics) ObserveAttempt(correct, credited bool) {
	if m == nil {
		return
	}
	outcome := "incorrect"
	switch {
	case credited:
		outcome = "credited"
	case correct:
		outcome = "correct"
	}
	m.attempts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) IncLearningEvent(event, status string) {
	if m == nil {
		return
	}
	m.events.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event", orDefault(event, "unknown")),
		attribute.String("status", orDefault(status, "ok")),
	))
}

// RegisterDBStats reports database/sql pool stats on every collection.
func (m *Metrics) RegisterDBStats(db *gorm.DB) error {
	if m == nil || db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	gauge, err := m.meter.Int64ObservableGauge("lq_db_pool_stats",
		metric.WithDescription("Database connection pool stats."))
	if err != nil {
		return err
	}
	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		for name, v := range map[string]int64{
			"open_connections":     int64(stats.OpenConnections),
			"in_use":               int64(stats.InUse),
			"idle":                 int64(stats.Idle),
			"wait_count":           stats.WaitCount,
			"max_open_connections": int64(stats.MaxOpenConnections),
		} {
			o.ObserveInt64(gauge, v, metric.WithAttributes(attribute.String("metric", name)))
		}
		return nil
	}, gauge)
	if err != nil {
		return err
	}
	m.track(reg)
	return nil
}

// RegisterRedis pings Redis on every collection and reports liveness and latency.
func (m *Metrics) RegisterRedis(rdb goredis.UniversalClient) error {
	if m == nil || rdb == nil {
		return nil
	}
	up, err := m.meter.Int64ObservableGauge("lq_redis_up",
		metric.WithDescription("Redis connectivity (1=up, 0=down)."))
	if err != nil {
		return err
	}
	ping, err := m.meter.Float64ObservableGauge("lq_redis_ping_seconds",
		metric.WithDescription("Redis ping latency in seconds."))
	if err != nil {
		return err
	}
	reg, err := m.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		start := time.Now()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			o.ObserveInt64(up, 0)
			return nil
		}
		o.ObserveInt64(up, 1)
		o.ObserveFloat64(ping, time.Since(start).Seconds())
		return nil
	}, up, ping)
	if err != nil {
		return err
	}
	m.track(reg)
	return nil
}

func (m *Metrics) track(reg metric.Registration) {
	m.mu.Lock()
	m.registered = append(m.registered, reg)
	m.mu.Unlock()
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(r.Context(), w)
}

// WritePrometheus collects the current state and writes it in the text exposition format.
func (m *Metrics) WritePrometheus(ctx context.Context, w io.Writer) error {
	if m == nil {
		return nil
	}
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return err
	}
	var all []metricdata.Metrics
	for _, sm := range rm.ScopeMetrics {
		all = append(all, sm.Metrics...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	for _, md := range all {
		if err := writeMetric(w, md); err != nil {
			return err
		}
	}
	return nil
}

func writeMetric(w io.Writer, md metricdata.Metrics) error {
	switch data := md.Data.(type) {
	case metricdata.Sum[int64]:
		kind := "gauge"
		if data.IsMonotonic {
			kind = "counter"
		}
		lines := make([]string, 0, len(data.DataPoints))
		for _, dp := range data.DataPoints {
			lines = append(lines, md.Name+labelString(dp.Attributes)+" "+strconv.FormatInt(dp.Value, 10))
		}
		return writeFamily(w, md, kind, lines)
	case metricdata.Gauge[int64]:
		lines := make([]string, 0, len(data.DataPoints))
		for _, dp := range data.DataPoints {
			lines = append(lines, md.Name+labelString(dp.Attributes)+" "+strconv.FormatInt(dp.Value, 10))
		}
		return writeFamily(w, md, "gauge", lines)
	case metricdata.Gauge[float64]:
		lines := make([]string, 0, len(data.DataPoints))
		for _, dp := range data.DataPoints {
			lines = append(lines, md.Name+labelString(dp.Attributes)+" "+formatFloat(dp.Value))
		}
		return writeFamily(w, md, "gauge", lines)
	case metricdata.Histogram[float64]:
		var lines []string
		for _, dp := range data.DataPoints {
			labels := dp.Attributes
			var cumulative uint64
			for i, bound := range dp.Bounds {
				if i < len(dp.BucketCounts) {
					cumulative += dp.BucketCounts[i]
				}
				lines = append(lines, fmt.Sprintf("%s_bucket%s %d", md.Name, labelStringWith(labels, "le", formatFloat(bound)), cumulative))
			}
			lines = append(lines,
				fmt.Sprintf("%s_bucket%s %d", md.Name, labelStringWith(labels, "le", "+Inf"), dp.Count),
				fmt.Sprintf("%s_sum%s %s", md.Name, labelString(labels), formatFloat(dp.Sum)),
				fmt.Sprintf("%s_count%s %d", md.Name, labelString(labels), dp.Count),
			)
		}
		return writeFamily(w, md, "histogram", lines)
	default:
		return nil
	}
}

func writeFamily(w io.Writer, md metricdata.Metrics, kind string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	sort.Strings(lines)
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", md.Name, md.Description, md.Name, kind); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func labelString(set attribute.Set) string {
	return labelStringWith(set, "", "")
}

func labelStringWith(set attribute.Set, extraKey, extraVal string) string {
	parts := make([]string, 0, set.Len()+1)
	for _, kv := range set.ToSlice() {
		parts = append(parts, string(kv.Key)+"=\""+escapeLabel(kv.Value.Emit())+"\"")
	}
	if extraKey != "" {
		parts = append(parts, extraKey+"=\""+escapeLabel(extraVal)+"\"")
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\n", "\\n")
	return strings.ReplaceAll(v, "\"", "\\\"")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return f, err == nil
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
