package jobs

import (
	"encoding/json"
	"time"
)

// SignupEmailPayload is the welcome email sent after registration.
type SignupEmailPayload struct {
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	InstitutionID string    `json:"institutionId"`
	RequestedAt   time.Time `json:"requestedAt"`
	RequestID     string    `json:"requestId,omitempty"` // optional: correlation
}

// RecoveryEmailPayload delivers the plaintext recovery code out-of-band.
// This is the only place the code travels once legacy mode is off.
type RecoveryEmailPayload struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	RequestedAt time.Time `json:"requestedAt"`
}

// CacheUpsertPayload refreshes the user-institution cache entry.
type CacheUpsertPayload struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	InstitutionID string `json:"institutionId"`
}

func (p SignupEmailPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func (p RecoveryEmailPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func (p CacheUpsertPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
