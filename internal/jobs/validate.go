package jobs

import "strings"

// ValidatePayload performs minimal validation on decoded payloads before
// they are enqueued.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := func(s string) string { return strings.TrimSpace(s) }

	switch t {
	case JobSendSignupEmail:
		var p SignupEmailPayload
		switch v := payload.(type) {
		case SignupEmailPayload:
			p = v
		case *SignupEmailPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.UserID) == "" || trim(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobSendRecoveryEmail:
		var p RecoveryEmailPayload
		switch v := payload.(type) {
		case RecoveryEmailPayload:
			p = v
		case *RecoveryEmailPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.UserID) == "" || trim(p.Email) == "" || trim(p.Code) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobCacheUpsert:
		var p CacheUpsertPayload
		switch v := payload.(type) {
		case CacheUpsertPayload:
			p = v
		case *CacheUpsertPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.UserID) == "" || trim(p.InstitutionID) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
