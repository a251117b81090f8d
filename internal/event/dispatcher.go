package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hitoshi/memelandia/internal/metrics"
)

// ErrQueueFull はキューが満杯でイベントを破棄したことを表す。
var ErrQueueFull = errors.New("event queue full")

// ErrDispatcherClosed はClose後にEmitされたイベントを破棄したことを表す。
var ErrDispatcherClosed = errors.New("event dispatcher closed")

// Emitter はサービス層から見たイベント送出口。呼び出し元をブロックせず、エラーも返さない。
type Emitter interface {
	Emit(topic string, payload any)
}

// Result は1件のイベント配信の結果。
type Result struct {
	Topic string
	Err   error
}

type envelope struct {
	topic   string
	payload any
}

// DispatcherConfig はDispatcherの設定を保持する。
type DispatcherConfig struct {
	Prefix         string        // チャネル名の接頭辞（例: "memelandia"）
	BufferSize     int           // キューの容量
	PublishTimeout time.Duration // 1件あたりの送出タイムアウト
}

// Dispatcher はイベントを非同期に1つのワーカーで送出する。
// 配信結果は結果チャネル経由でログと失敗カウンタにのみ反映され、
// Emitの呼び出し元に返ることはない。
type Dispatcher struct {
	publisher Publisher
	recorder  metrics.Recorder
	logger    *slog.Logger
	cfg       DispatcherConfig

	mu     sync.RWMutex
	closed bool
	queue  chan envelope

	results  chan Result
	workerWG sync.WaitGroup
	resultWG sync.WaitGroup

	failures atomic.Int64
}

// NewDispatcher はDispatcherを生成し、送出ワーカーと結果の集計を開始する。
func NewDispatcher(publisher Publisher, cfg DispatcherConfig, recorder metrics.Recorder, logger *slog.Logger) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
		cfg:       cfg,
		queue:     make(chan envelope, cfg.BufferSize),
		results:   make(chan Result, cfg.BufferSize),
	}

	d.workerWG.Add(1)
	go d.run()

	d.resultWG.Add(1)
	go d.collect()

	return d
}

// Emit はイベントをキューに積む。キューが満杯、またはClose済みの場合は破棄して失敗として記録する。
func (d *Dispatcher) Emit(topic string, payload any) {
	channel := d.channel(topic)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.observe(Result{Topic: channel, Err: ErrDispatcherClosed})
		return
	}

	select {
	case d.queue <- envelope{topic: channel, payload: payload}:
	default:
		d.observe(Result{Topic: channel, Err: ErrQueueFull})
	}
}

// Failures はこれまでに配信に失敗したイベント数を返す。
func (d *Dispatcher) Failures() int64 {
	return d.failures.Load()
}

// Close は新規受付を止め、キューに残ったイベントを送出し終えるまで待つ。
// ctxが先に終了した場合はctx.Err()を返す。残りの送出はバックグラウンドで続く。
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workerWG.Wait()
		d.resultWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.workerWG.Done()
	defer close(d.results)

	for env := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.PublishTimeout)
		err := d.publisher.Publish(ctx, env.topic, env.payload)
		cancel()
		d.results <- Result{Topic: env.topic, Err: err}
	}
}

func (d *Dispatcher) collect() {
	defer d.resultWG.Done()
	for r := range d.results {
		d.observe(r)
	}
}

func (d *Dispatcher) observe(r Result) {
	if r.Err == nil {
		d.recorder.RecordEvent(r.Topic, metrics.EventPublished)
		d.logger.Debug("event published", slog.String("topic", r.Topic))
		return
	}

	d.failures.Add(1)
	result := metrics.EventFailed
	if errors.Is(r.Err, ErrQueueFull) || errors.Is(r.Err, ErrDispatcherClosed) {
		result = metrics.EventDropped
	}
	d.recorder.RecordEvent(r.Topic, result)
	d.logger.Warn("event delivery failed",
		slog.String("topic", r.Topic),
		slog.String("result", result),
		slog.String("error", r.Err.Error()),
	)
}

func (d *Dispatcher) channel(topic string) string {
	if d.cfg.Prefix == "" {
		return topic
	}
	return d.cfg.Prefix + "." + topic
}

// compile-time interface check
var _ Emitter = (*Dispatcher)(nil)
