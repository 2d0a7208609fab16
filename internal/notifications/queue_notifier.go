package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/comflo/identity/internal/domain/job"
	"github.com/comflo/identity/internal/domain/user"
	"github.com/comflo/identity/internal/jobs"
)

type JobsCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

// QueueNotifier implements the identity service's notification port by
// enqueueing durable jobs; the worker does the actual delivery. Enqueue
// failures surface to the caller, which logs and moves on — the primary
// operation has already committed.
type QueueNotifier struct {
	jobsRepo JobsCreator
}

func NewQueueNotifier(jobsRepo JobsCreator) *QueueNotifier {
	return &QueueNotifier{jobsRepo: jobsRepo}
}

func (n *QueueNotifier) NotifySignup(ctx context.Context, u user.Sanitized) error {
	payload := jobs.SignupEmailPayload{
		UserID:        u.ID,
		Email:         u.Email,
		Name:          u.Name,
		InstitutionID: u.InstitutionID,
		RequestedAt:   time.Now().UTC(),
	}

	if err := jobs.ValidatePayload(jobs.JobSendSignupEmail, payload); err != nil {
		return err
	}

	raw, err := payload.JSON()

	if err != nil {
		return err
	}

	key := "signup:email:" + u.ID
	uid := u.ID

	_, err = n.jobsRepo.Create(ctx, job.CreateRequest{
		Type:           string(jobs.JobSendSignupEmail),
		Payload:        raw,
		MaxAttempts:    10,
		IdempotencyKey: &key,
		UserID:         &uid,
	})

	// already queued for this user; nothing to do
	if errors.Is(err, job.ErrDuplicateJob) {
		return nil
	}

	return err
}

func (n *QueueNotifier) NotifyRecoveryCode(ctx context.Context, u user.Sanitized, code string) error {
	payload := jobs.RecoveryEmailPayload{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Code:        code,
		RequestedAt: time.Now().UTC(),
	}

	if err := jobs.ValidatePayload(jobs.JobSendRecoveryEmail, payload); err != nil {
		return err
	}

	raw, err := payload.JSON()

	if err != nil {
		return err
	}

	uid := u.ID

	// no idempotency key: every recovery request is a fresh code
	_, err = n.jobsRepo.Create(ctx, job.CreateRequest{
		Type:        string(jobs.JobSendRecoveryEmail),
		Payload:     raw,
		MaxAttempts: 10,
		UserID:      &uid,
	})

	return err
}

func (n *QueueNotifier) NotifyCacheUpsert(ctx context.Context, u user.Sanitized) error {
	payload := jobs.CacheUpsertPayload{
		UserID:        u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		InstitutionID: u.InstitutionID,
	}

	if err := jobs.ValidatePayload(jobs.JobCacheUpsert, payload); err != nil {
		return err
	}

	raw, err := payload.JSON()

	if err != nil {
		return err
	}

	uid := u.ID

	_, err = n.jobsRepo.Create(ctx, job.CreateRequest{
		Type:        string(jobs.JobCacheUpsert),
		Payload:     raw,
		MaxAttempts: 5,
		UserID:      &uid,
	})

	return err
}
