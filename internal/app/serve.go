package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/memelandia/internal/category"
	"github.com/hitoshi/memelandia/internal/config"
	"github.com/hitoshi/memelandia/internal/database"
	"github.com/hitoshi/memelandia/internal/event"
	"github.com/hitoshi/memelandia/internal/handler"
	"github.com/hitoshi/memelandia/internal/lookup"
	"github.com/hitoshi/memelandia/internal/meme"
	"github.com/hitoshi/memelandia/internal/metrics"
	"github.com/hitoshi/memelandia/internal/middleware"
	"github.com/hitoshi/memelandia/internal/repository"
	"github.com/hitoshi/memelandia/internal/user"
)

const shutdownTimeout = 30 * time.Second

// components はserveで起動するサービス1つ分の依存関係をまとめたもの。
type components struct {
	handler     http.Handler
	db          *sql.DB
	dispatcher  *event.Dispatcher
	redis       *event.RedisPublisher
	rateLimiter *middleware.RateLimiter
}

// close はHTTPサーバー停止後に呼び、イベントを送出し切ってから接続を閉じる。
func (c *components) close(ctx context.Context, l *slog.Logger) {
	if c.rateLimiter != nil {
		c.rateLimiter.Stop()
	}
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(ctx); err != nil {
			l.Warn("event dispatcher did not drain before shutdown", slog.String("error", err.Error()))
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			l.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			l.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}
}

// build はSERVICE_NAMEで選択されたサービスの依存関係を組み立てる。
// 途中で失敗した場合はそれまでに開いたリソースを閉じる。
func build(ctx context.Context, cfg *config.Config, l *slog.Logger) (*components, error) {
	c := &components{}
	built := false
	defer func() {
		if !built {
			c.close(context.Background(), l)
		}
	}()

	var err error

	// 1. ストレージ
	if cfg.StorageDriver == config.StoragePostgres {
		c.db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		l.Info("database connection established")
	}

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(reg)

	// 3. イベント送出
	var publisher event.Publisher = event.NewLogPublisher(l)
	if cfg.RedisAddr != "" {
		c.redis, err = event.NewRedisPublisher(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		publisher = c.redis
		l.Info("redis event sink enabled", slog.String("addr", cfg.RedisAddr))
	}
	c.dispatcher = event.NewDispatcher(publisher, event.DispatcherConfig{
		Prefix:         cfg.EventChannelPrefix,
		BufferSize:     cfg.EventBufferSize,
		PublishTimeout: cfg.EventPublishTimeout,
	}, recorder, l)

	// 4. ルーター
	c.rateLimiter = middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitCreate), l)
	deps := &handler.RouterDeps{
		Logger:            l,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       c.rateLimiter,
		MetricsHandler:    metrics.Handler(reg),
	}
	if c.db != nil {
		deps.HealthChecker = c.db
	}

	// 5. ドメインサービス
	switch cfg.ServiceName {
	case config.ServiceCategory:
		var repo repository.CategoryRepository = repository.NewMemoryCategoryRepo()
		if c.db != nil {
			repo = repository.NewPostgresCategoryRepo(c.db)
		}
		deps.CategoryService = category.NewService(repo, c.dispatcher, recorder, l)

	case config.ServiceUser:
		var repo repository.UserRepository = repository.NewMemoryUserRepo()
		if c.db != nil {
			repo = repository.NewPostgresUserRepo(c.db)
		}
		deps.UserService = user.NewService(repo, c.dispatcher, recorder, l)

	case config.ServiceMeme:
		var repo repository.MemeRepository = repository.NewMemoryMemeRepo()
		if c.db != nil {
			repo = repository.NewPostgresMemeRepo(c.db)
		}
		httpClient := lookup.NewHTTPClient(cfg.RemoteLookupTimeout)
		refs := meme.NewReferenceValidator(
			lookup.NewCategoryClient(cfg.CategoryServiceURL, httpClient, l),
			lookup.NewUserClient(cfg.UserServiceURL, httpClient, l),
		)
		deps.MemeService = meme.NewService(repo, refs, c.dispatcher, recorder, l)
	}

	c.handler = handler.NewRouter(deps)
	built = true
	return c, nil
}

// serve はHTTPサーバーを起動し、ctxが終了するまでブロックする。
// 終了時はHTTPサーバーを先に止め、処理中のリクエストが送出したイベントを送り切ってから戻る。
func serve(ctx context.Context, cfg *config.Config, l *slog.Logger) error {
	c, err := build(ctx, cfg, l)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      c.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		c.close(shutdownCtx, l)
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	l.Info("API server stopped gracefully")
	return nil
}
