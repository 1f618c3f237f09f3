package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/speechbox/internal/metrics"
	"github.com/hitoshi/speechbox/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nil許容）
	Metrics         *metrics.Collector
	MetricsGatherer prometheus.Gatherer

	// ドメインサービス
	SpeechService  SpeechServiceInterface
	VersionService VersionServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → [Metrics] → Session → RateLimit(General)
//
// /health と /metrics はミドルウェアチェーンの外（認証不要）に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	speechHandler := NewSpeechHandler(deps.SpeechService, operationRecorderOrNil(deps.Metrics))
	versionHandler := NewVersionHandler(deps.VersionService, operationRecorderOrNil(deps.Metrics))

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		mutationMW := passthroughMiddleware
		if deps.RateLimiter != nil {
			mutationMW = deps.RateLimiter.MutationMiddleware()
		}

		// スピーチ管理
		r.Route("/api/speeches", func(r chi.Router) {
			r.Get("/", speechHandler.ListSpeeches)
			r.With(mutationMW).Post("/", speechHandler.CreateSpeech)

			r.Route("/{speechID}", func(r chi.Router) {
				r.With(mutationMW).Patch("/", speechHandler.UpdateSpeech)

				// バージョン管理
				r.Route("/versions", func(r chi.Router) {
					r.Get("/", versionHandler.ListVersions)
					r.With(mutationMW).Post("/", versionHandler.CreateVersion)

					r.Route("/{versionID}", func(r chi.Router) {
						r.With(mutationMW).Patch("/", versionHandler.UpdateVersion)
						r.With(mutationMW).Delete("/", versionHandler.DeleteVersion)
					})
				})
			})
		})
	})

	return r
}

// operationRecorderOrNil はnilの*metrics.Collectorをnilインターフェースに変換する。
func operationRecorderOrNil(c *metrics.Collector) OperationRecorder {
	if c == nil {
		return nil
	}
	return c
}

// passthroughMiddleware は何もしないミドルウェア。レートリミッター未設定時に使用する。
func passthroughMiddleware(next http.Handler) http.Handler {
	return next
}
