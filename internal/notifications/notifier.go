package notifications

import "context"

type SendSignupEmailInput struct {
	Email         string
	Name          string
	InstitutionID string
}

type SendRecoveryEmailInput struct {
	Email string
	Name  string
	Code  string
}

// Mailer is the delivery backend the worker hands email jobs to.
type Mailer interface {
	SendSignupEmail(ctx context.Context, input SendSignupEmailInput) error
	SendRecoveryEmail(ctx context.Context, input SendRecoveryEmailInput) error
}
