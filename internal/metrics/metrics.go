// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作結果のラベル値。
const (
	OutcomeSuccess          = "success"
	OutcomeDuplicate        = "duplicate"
	OutcomeInvalid          = "invalid"
	OutcomeNotFound         = "not_found"
	OutcomeEmpty            = "empty"
	OutcomeCategoryNotFound = "category_not_found"
	OutcomeUserNotFound     = "user_not_found"
	OutcomeTransportError   = "transport_error"
	OutcomeError            = "error"
	OutcomeEventFailed      = "event_failed"
)

// イベント配信結果のラベル値。
const (
	EventPublished = "published"
	EventFailed    = "failed"
	EventDropped   = "dropped"
)

// Recorder はメトリクス記録のインターフェース。
// サービス層とイベントディスパッチャから利用する。
type Recorder interface {
	RecordCall(entity, operation string)
	RecordOutcome(entity, operation, outcome string)
	RecordDuration(entity, operation string, d time.Duration)
	RecordListSize(entity string, n int)
	RecordEvent(topic, result string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	calls    *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	listSize *prometheus.GaugeVec
	events   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memelandia_operation_calls_total",
			Help: "操作の呼び出し回数",
		}, []string{"entity", "operation"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memelandia_operation_outcomes_total",
			Help: "操作結果別の件数",
		}, []string{"entity", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memelandia_operation_duration_milliseconds",
			Help:    "操作の処理時間（ミリ秒）",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"entity", "operation"}),
		listSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "memelandia_list_size",
			Help: "直近の一覧取得で返した件数",
		}, []string{"entity"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memelandia_events_total",
			Help: "イベント配信結果別の件数",
		}, []string{"topic", "result"}),
	}

	reg.MustRegister(
		c.calls,
		c.outcomes,
		c.duration,
		c.listSize,
		c.events,
	)

	return c
}

// RecordCall は操作の呼び出しを記録する。
func (c *Collector) RecordCall(entity, operation string) {
	c.calls.WithLabelValues(entity, operation).Inc()
}

// RecordOutcome は操作結果を記録する。
func (c *Collector) RecordOutcome(entity, operation, outcome string) {
	c.outcomes.WithLabelValues(entity, operation, outcome).Inc()
}

// RecordDuration は操作の処理時間をミリ秒で記録する。
func (c *Collector) RecordDuration(entity, operation string, d time.Duration) {
	c.duration.WithLabelValues(entity, operation).Observe(float64(d) / float64(time.Millisecond))
}

// RecordListSize は一覧取得の件数を記録する。
func (c *Collector) RecordListSize(entity string, n int) {
	c.listSize.WithLabelValues(entity).Set(float64(n))
}

// RecordEvent はイベント配信結果を記録する。
func (c *Collector) RecordEvent(topic, result string) {
	c.events.WithLabelValues(topic, result).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// Nop は何も記録しないRecorder。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordCall(string, string) {}
func (Nop) RecordOutcome(string, string, string) {}
func (Nop) RecordDuration(string, string, time.Duration) {}
func (Nop) RecordListSize(string, int) {}
func (Nop) RecordEvent(string, string) {}

// compile-time interface check
var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
