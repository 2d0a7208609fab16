package jobs

type JobType string

const (
	JobSendSignupEmail   JobType = "user.signup_email"
	JobSendRecoveryEmail JobType = "user.recovery_email"
	JobCacheUpsert       JobType = "user.institution_cache_upsert"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobSendSignupEmail, JobSendRecoveryEmail, JobCacheUpsert:
		return true
	default:
		return false
	}
}
