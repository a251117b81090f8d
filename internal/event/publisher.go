// Package event はエンティティ作成イベントのベストエフォート配信を提供する。
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hitoshi/memelandia/internal/model"
)

// Publisher はイベントの送出先。
// Publishの失敗は呼び出し元の操作結果に影響させず、Dispatcherが記録のみ行う。
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Envelope はチャネルに送出するメッセージ本体。
type Envelope struct {
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Created はエンティティ作成イベントのトピック名を返す。
func Created(kind model.EntityKind) string {
	return kind.String() + ".created"
}

// RedisPublisher はRedis Pub/Subへイベントを送出する。
type RedisPublisher struct {
	rdb *goredis.Client
}

// NewRedisPublisher はRedisに接続し、疎通を確認したRedisPublisherを返す。
func NewRedisPublisher(ctx context.Context, addr string) (*RedisPublisher, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisPublisher{rdb: rdb}, nil
}

// NewRedisPublisherWithClient は既存のクライアントを使うRedisPublisherを返す。
func NewRedisPublisherWithClient(rdb *goredis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish はpayloadをEnvelopeに包んでJSONでtopicチャネルに送出する。
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	raw, err := json.Marshal(Envelope{Topic: topic, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", topic, err)
	}
	if err := p.rdb.Publish(ctx, topic, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", topic, err)
	}
	return nil
}

// Close はRedis接続を閉じる。
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// LogPublisher はイベントを構造化ログとして出力するだけのPublisher。
// REDIS_ADDRが未設定の場合に使う。
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher はLogPublisherを生成する。
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish はイベントをinfoレベルで記録する。
func (p *LogPublisher) Publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", topic, err)
	}
	p.logger.InfoContext(ctx, "event emitted",
		slog.String("topic", topic),
		slog.String("payload", string(raw)),
	)
	return nil
}

// compile-time interface check
var (
	_ Publisher = (*RedisPublisher)(nil)
	_ Publisher = (*LogPublisher)(nil)
)
