package jobs

import (
	"testing"
	"time"
)

func TestEncodeDecode_RecoveryEmail(t *testing.T) {
	payload := RecoveryEmailPayload{
		UserID:      "user-123",
		Email:       "ada@known.edu",
		Name:        "Ada",
		Code:        "48213",
		RequestedAt: time.Now().UTC(),
	}

	b, err := EncodePayload(JobSendRecoveryEmail, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	decoded, err := DecodePayload(JobSendRecoveryEmail, b)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(RecoveryEmailPayload)
	if !ok {
		t.Fatalf("expected RecoveryEmailPayload, got %T", decoded)
	}

	if p.Code != payload.Code {
		t.Fatalf("expected code %s, got %s", payload.Code, p.Code)
	}

	if p.Email != payload.Email {
		t.Fatalf("expected email %s, got %s", payload.Email, p.Email)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	payload := CacheUpsertPayload{
		UserID:        "user-123",
		InstitutionID: "inst-456",
	}

	_, err := EncodePayload(JobSendSignupEmail, payload)
	if err != ErrPayloadTypeMismatch {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodePayload_InvalidType(t *testing.T) {
	_, err := EncodePayload(JobType("bogus"), SignupEmailPayload{})
	if err != ErrInvalidJobType {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestDecodePayload_Empty(t *testing.T) {
	_, err := DecodePayload(JobCacheUpsert, nil)
	if err != ErrInvalidJobPayload {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		jobType JobType
		payload any
		wantErr error
	}{
		{
			name:    "valid signup email",
			jobType: JobSendSignupEmail,
			payload: SignupEmailPayload{UserID: "u1", Email: "a@b.edu"},
			wantErr: nil,
		},
		{
			name:    "signup email missing user",
			jobType: JobSendSignupEmail,
			payload: SignupEmailPayload{Email: "a@b.edu"},
			wantErr: ErrInvalidJobPayload,
		},
		{
			name:    "recovery email missing code",
			jobType: JobSendRecoveryEmail,
			payload: RecoveryEmailPayload{UserID: "u1", Email: "a@b.edu"},
			wantErr: ErrInvalidJobPayload,
		},
		{
			name:    "cache upsert pointer payload",
			jobType: JobCacheUpsert,
			payload: &CacheUpsertPayload{UserID: "u1", InstitutionID: "i1"},
			wantErr: nil,
		},
		{
			name:    "wrong payload struct",
			jobType: JobCacheUpsert,
			payload: SignupEmailPayload{UserID: "u1", Email: "a@b.edu"},
			wantErr: ErrPayloadTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.jobType, tt.payload)
			if err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
