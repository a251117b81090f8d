package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/memelandia/internal/middleware"
)

// HealthChecker はヘルスチェック時に依存先の疎通を確認するインターフェース。
// *sql.DBはこれを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
// 1プロセスは1サービスのみを提供するため、3つのサービスのうち設定されたものだけを登録する。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ヘルスチェックとメトリクス
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	CategoryService CategoryServiceInterface
	UserService     UserServiceInterface
	MemeService     MemeServiceInterface
}

// NewRouter はAPIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Recovery → Logging → SecurityHeaders → CORS
//
// 作成系（POST）のみレート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.Get("/health", healthHandler(deps.HealthChecker, logger))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	var createMiddleware func(http.Handler) http.Handler
	if deps.RateLimiter != nil {
		createMiddleware = deps.RateLimiter.CreateMiddleware()
	}

	if deps.CategoryService != nil {
		SetupCategoryRoutes(r, deps.CategoryService, createMiddleware)
	}
	if deps.UserService != nil {
		SetupUserRoutes(r, deps.UserService, createMiddleware)
	}
	if deps.MemeService != nil {
		SetupMemeRoutes(r, deps.MemeService, createMiddleware)
	}

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler は依存先への疎通を確認し、200または503を返す。
// checkerがnilの場合（メモリストア使用時）は常に200を返す。
func healthHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := checker.PingContext(ctx); err != nil {
				logger.WarnContext(r.Context(), "health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
