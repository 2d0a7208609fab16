package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// LogMailer is the dev delivery backend: it writes the email to the log
// instead of sending it.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (n *LogMailer) SendSignupEmail(ctx context.Context, in SendSignupEmailInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	log.Printf("notification.signup_email email=%s name=%s institution=%s",
		in.Email, in.Name, in.InstitutionID,
	)
	return nil
}

func (n *LogMailer) SendRecoveryEmail(ctx context.Context, in SendRecoveryEmailInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	// the code itself stays out of the log line
	log.Printf("notification.recovery_email email=%s name=%s code_digits=%d",
		in.Email, in.Name, len(in.Code),
	)
	return nil
}

func simulateProvider(ctx context.Context) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
