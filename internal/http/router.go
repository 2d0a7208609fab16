package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/comflo/identity/internal/auth"
	"github.com/comflo/identity/internal/cache"
	"github.com/comflo/identity/internal/config"
	"github.com/comflo/identity/internal/geo"
	"github.com/comflo/identity/internal/http/handlers"
	"github.com/comflo/identity/internal/http/middlewares"
	"github.com/comflo/identity/internal/identity"
	"github.com/comflo/identity/internal/notifications"
	"github.com/comflo/identity/internal/observability"
	"github.com/comflo/identity/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry for this process
	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("identity-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.HTTPMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB
	r.Use(middlewares.RequireJSON())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	institutionsRepo := postgres.NewInstitutionsRepo(pool, prom)
	storesRepo := postgres.NewStoresRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	directory := cache.NewCachedDirectory(institutionsRepo, 30*time.Second)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL())

	svc := identity.NewService(
		usersRepo,
		directory,
		identity.BcryptHasher{},
		jwtManager,
		identity.NumericCodeGenerator{},
		notifications.NewQueueNotifier(jobsRepo),
		identity.Options{LegacyRecovery: cfg.LegacyRecoveryResponse},
		log,
	)

	authHandler := handlers.NewAuthHandler(svc, cfg.LegacyRecoveryResponse)

	r.POST("/auth", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/token", authHandler.RequestRecoveryCode)
	r.POST("/auth/reset-pass", authHandler.ResetPassword)

	// store locator, behind session auth
	authMW := middlewares.NewAuthMiddleware(jwtManager)
	storesHandler := handlers.NewStoresHandler(geo.NewGoogleGeocoder(cfg.GeocoderAPIKey), storesRepo)

	r.GET("/stores", authMW.RequireAuth(), storesHandler.Nearest)

	return r
}
