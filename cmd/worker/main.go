package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/comflo/identity/internal/cache"
	"github.com/comflo/identity/internal/config"
	"github.com/comflo/identity/internal/db"
	"github.com/comflo/identity/internal/notifications"
	"github.com/comflo/identity/internal/observability"
	"github.com/comflo/identity/internal/queue/redisclient"
	"github.com/comflo/identity/internal/queue/worker"
	"github.com/comflo/identity/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	prom := observability.NewProm(prometheus.NewRegistry())

	jobsRepo := postgres.NewJobsRepo(pool, prom)

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer rdb.Close()

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
	err = rdb.Ping(pingCtx)
	cancelPing()

	if err != nil {
		// cache upserts will fail and retry until redis comes back
		log.Warn("redis unreachable at startup", "err", err)
	}

	instCache := cache.NewUserInstitutionCache(rdb.Raw(), 24*time.Hour)

	mailer := notifications.NewProtectedMailer(notifications.NewLogMailer(), notifications.ProtectedMailerConfig{})

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval: 200 * time.Millisecond,
		WorkerID:     workerID,
		LockTTL:      2 * time.Minute,
	}, jobsRepo, mailer, instCache, prom, log)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := healthSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("worker started", "worker_id", workerID)

	err = w.Run(ctx)

	if err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker shutdown complete")
}
