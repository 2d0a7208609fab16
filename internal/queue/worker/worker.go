package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comflo/identity/internal/cache"
	"github.com/comflo/identity/internal/domain/job"
	"github.com/comflo/identity/internal/jobs"
	"github.com/comflo/identity/internal/notifications"
	"github.com/comflo/identity/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type InstitutionCache interface {
	Upsert(ctx context.Context, e cache.UserInstitutionEntry) error
}

type Config struct {
	PollInterval time.Duration
	WorkerID     string
	LockTTL      time.Duration
}

// Worker drains the notification jobs the identity service enqueues:
// welcome emails, recovery-code emails and user-institution cache upserts.
type Worker struct {
	cfg    Config
	repo   JobsRepository
	mailer notifications.Mailer
	cache  InstitutionCache
	prom   *observability.Prom
	log    *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, mailer notifications.Mailer, instCache InstitutionCache, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:    cfg,
		repo:   repo,
		mailer: mailer,
		cache:  instCache,
		prom:   prom,
		log:    log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	// stale-lock sweep runs on a much slower cadence
	sweep := time.NewTicker(w.cfg.LockTTL)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-sweep.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				w.log.Error("stale requeue failed", "err", err)
			} else if n > 0 {
				w.log.Info("requeued stale jobs", "count", n)
			}

		case <-ticker.C:
			// drain everything that is runnable before going back to sleep
			for {
				processed, err := w.ProcessOne(ctx)
				if err != nil {
					w.log.Error("process error", "err", err)
					break
				}
				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	start := time.Now()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
	}

	err = w.execute(ctx, j)

	if w.prom != nil {
		w.prom.JobsInFlight.Dec()
		result := "ok"
		if err != nil {
			result = "error"
		}
		w.prom.JobDuration.WithLabelValues(j.Type, result).Observe(time.Since(start).Seconds())
		w.prom.JobResults.WithLabelValues(j.Type, result).Inc()
	}

	if err != nil {
		w.handleFailure(ctx, j, err)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	decoded, err := jobs.DecodePayload(jobs.JobType(j.Type), j.Payload)

	if err != nil {
		return err
	}

	switch p := decoded.(type) {
	case jobs.SignupEmailPayload:
		return w.mailer.SendSignupEmail(ctx, notifications.SendSignupEmailInput{
			Email:         p.Email,
			Name:          p.Name,
			InstitutionID: p.InstitutionID,
		})

	case jobs.RecoveryEmailPayload:
		return w.mailer.SendRecoveryEmail(ctx, notifications.SendRecoveryEmailInput{
			Email: p.Email,
			Name:  p.Name,
			Code:  p.Code,
		})

	case jobs.CacheUpsertPayload:
		return w.cache.Upsert(ctx, cache.UserInstitutionEntry{
			UserID:        p.UserID,
			Email:         p.Email,
			Name:          p.Name,
			Role:          p.Role,
			InstitutionID: p.InstitutionID,
		})

	default:
		return fmt.Errorf("no executor for job type %q", j.Type)
	}
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) {
	// Attempts was incremented by the claim's reschedule path; j.Attempts is
	// the count before this run.
	if j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, cause.Error()); err != nil {
			w.log.Error("mark failed error", "job_id", j.ID, "err", err)
		}

		w.log.Error("job dead-lettered", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "err", cause)
		return
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, cause.Error()); err != nil {
		w.log.Error("reschedule error", "job_id", j.ID, "err", err)
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
