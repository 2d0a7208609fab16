package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/comflo/identity/internal/domain/institution"
	"github.com/comflo/identity/internal/domain/user"
	"github.com/google/uuid"
)

// UserRepository is the persistence boundary for user records. The hash
// columns are excluded from reads by default; the two authenticated-flow
// reads each pull in exactly the one secret the operation needs. Writes are
// intent-specific so a flow can never clobber a secret it did not load.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (user.User, error)
	GetByEmailWithRecoveryCode(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	UpdateSessionToken(ctx context.Context, id, token string) error
	SetRecoveryCode(ctx context.Context, id, codeHash string) error
	ResetCredentials(ctx context.Context, id, passwordHash, token string, clearRecovery bool) error
}

// InstitutionDirectory is read-only from this service's perspective.
type InstitutionDirectory interface {
	FindByDomain(ctx context.Context, domain string) (institution.Institution, error)
}

type CredentialHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}

type TokenIssuer interface {
	IssueSessionToken(userID, email, role string) (string, error)
}

type CodeGenerator interface {
	Generate() (string, error)
}

// Notifier is the outbound port for welcome emails, recovery-code delivery
// and the user-institution cache fan-out. Calls happen after the primary
// write commits; a failure here never changes the operation's result.
type Notifier interface {
	NotifySignup(ctx context.Context, u user.Sanitized) error
	NotifyRecoveryCode(ctx context.Context, u user.Sanitized, code string) error
	NotifyCacheUpsert(ctx context.Context, u user.Sanitized) error
}

type Options struct {
	// LegacyRecovery reproduces the historical contract: the recovery code
	// hash is not cleared on a successful reset, so a code stays usable.
	// Off by default; codes are single-use.
	LegacyRecovery bool
}

type Service struct {
	users        UserRepository
	institutions InstitutionDirectory
	hasher       CredentialHasher
	tokens       TokenIssuer
	codes        CodeGenerator
	notifier     Notifier
	opts         Options
	log          *slog.Logger
}

func NewService(
	users UserRepository,
	institutions InstitutionDirectory,
	hasher CredentialHasher,
	tokens TokenIssuer,
	codes CodeGenerator,
	notifier Notifier,
	opts Options,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:        users,
		institutions: institutions,
		hasher:       hasher,
		tokens:       tokens,
		codes:        codes,
		notifier:     notifier,
		opts:         opts,
		log:          log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginInput struct {
	Email    string
	Password string
}

type ResetInput struct {
	Email    string
	Password string
	Code     string
}

// Register creates a user whose email domain matches a known institution.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.Sanitized, error) {
	if err := requireFields(map[string]string{
		"name":     in.Name,
		"email":    in.Email,
		"password": in.Password,
		"role":     in.Role,
	}); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, in.Email)

	if err == nil {
		return nil, &ConflictError{Message: "email already exists"}
	}

	if !errors.Is(err, user.ErrNotFound) {
		return nil, s.internal("could not create user", err)
	}

	inst, err := s.institutions.FindByDomain(ctx, emailDomain(in.Email))

	if err != nil {
		if errors.Is(err, institution.ErrNotFound) {
			return nil, &BusinessRuleError{Message: "institution not found"}
		}

		return nil, s.internal("could not create user", err)
	}

	hash, err := s.hasher.Hash(in.Password)

	if err != nil {
		return nil, s.internal("could not create user", err)
	}

	now := time.Now().UTC()

	u := user.User{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  hash,
		Role:          in.Role,
		InstitutionID: inst.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	token, err := s.tokens.IssueSessionToken(u.ID, u.Email, u.Role)

	if err != nil {
		return nil, s.internal("could not create user", err)
	}

	u.SessionToken = token

	created, err := s.users.Create(ctx, u)

	if err != nil {
		// Concurrent registration of the same email loses the race at the
		// unique index, not in the pre-check above.
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, &ConflictError{Message: "email already exists"}
		}

		return nil, s.internal("could not create user", err)
	}

	sanitized := created.Sanitize()

	s.fanOut(ctx, "signup", func(ctx context.Context) error {
		return s.notifier.NotifySignup(ctx, sanitized)
	})
	s.fanOut(ctx, "cache_upsert", func(ctx context.Context) error {
		return s.notifier.NotifyCacheUpsert(ctx, sanitized)
	})

	return &sanitized, nil
}

// Login verifies the password and rotates the session token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*user.Sanitized, error) {
	if err := requireFields(map[string]string{
		"email":    in.Email,
		"password": in.Password,
	}); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmailWithPassword(ctx, in.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, &NotFoundError{Message: "user not found"}
		}

		return nil, s.internal("could not login user", err)
	}

	if err := s.hasher.Check(u.PasswordHash, in.Password); err != nil {
		return nil, &AuthenticationError{Message: "wrong password"}
	}

	token, err := s.tokens.IssueSessionToken(u.ID, u.Email, u.Role)

	if err != nil {
		return nil, s.internal("could not login user", err)
	}

	if err := s.users.UpdateSessionToken(ctx, u.ID, token); err != nil {
		return nil, s.internal("could not login user", err)
	}

	u.SessionToken = token
	u.UpdatedAt = time.Now().UTC()

	sanitized := u.Sanitize()

	s.fanOut(ctx, "cache_upsert", func(ctx context.Context) error {
		return s.notifier.NotifyCacheUpsert(ctx, sanitized)
	})

	return &sanitized, nil
}

// RequestRecoveryCode stores the hash of a fresh 5-digit code on the user
// record and hands the plaintext code back to the caller. The transport
// decides whether the plaintext leaves the process or only travels through
// the notification port.
func (s *Service) RequestRecoveryCode(ctx context.Context, email string) (string, error) {
	if err := requireFields(map[string]string{"email": email}); err != nil {
		return "", err
	}

	u, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", &NotFoundError{Message: "user not found"}
		}

		return "", s.internal("could not issue recovery code", err)
	}

	code, err := s.codes.Generate()

	if err != nil {
		return "", s.internal("could not issue recovery code", err)
	}

	hash, err := s.hasher.Hash(code)

	if err != nil {
		return "", s.internal("could not issue recovery code", err)
	}

	if err := s.users.SetRecoveryCode(ctx, u.ID, hash); err != nil {
		return "", s.internal("could not issue recovery code", err)
	}

	sanitized := u.Sanitize()

	s.fanOut(ctx, "recovery_code", func(ctx context.Context) error {
		return s.notifier.NotifyRecoveryCode(ctx, sanitized, code)
	})

	return code, nil
}

// ResetPassword validates the recovery code, replaces the password hash and
// rotates the session token. No payload is returned on success.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	if err := requireFields(map[string]string{
		"email":    in.Email,
		"password": in.Password,
		"code":     in.Code,
	}); err != nil {
		return err
	}

	u, err := s.users.GetByEmailWithRecoveryCode(ctx, in.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return &NotFoundError{Message: "user not found"}
		}

		return s.internal("could not reset password", err)
	}

	if u.RecoveryCodeHash == nil || s.hasher.Check(*u.RecoveryCodeHash, in.Code) != nil {
		return &AuthenticationError{Message: "wrong recovery code"}
	}

	hash, err := s.hasher.Hash(in.Password)

	if err != nil {
		return s.internal("could not reset password", err)
	}

	token, err := s.tokens.IssueSessionToken(u.ID, u.Email, u.Role)

	if err != nil {
		return s.internal("could not reset password", err)
	}

	if err := s.users.ResetCredentials(ctx, u.ID, hash, token, !s.opts.LegacyRecovery); err != nil {
		return s.internal("could not reset password", err)
	}

	u.SessionToken = token
	u.UpdatedAt = time.Now().UTC()

	sanitized := u.Sanitize()

	s.fanOut(ctx, "cache_upsert", func(ctx context.Context) error {
		return s.notifier.NotifyCacheUpsert(ctx, sanitized)
	})

	return nil
}

// fanOut invokes the notification port without letting it change the
// operation's outcome.
func (s *Service) fanOut(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}

	if err := fn(ctx); err != nil {
		s.log.WarnContext(ctx, "notification fan-out failed", "kind", kind, "err", err)
	}
}

func (s *Service) internal(msg string, cause error) error {
	s.log.Error(msg, "err", cause)

	return &InternalError{Message: msg, Cause: cause}
}

// emailDomain is everything after the first "@". Matches how institutions
// register their domains.
func emailDomain(email string) string {
	_, domain, _ := strings.Cut(email, "@")

	return domain
}

func requireFields(fields map[string]string) error {
	// stable ordering keeps error messages deterministic
	order := []string{"name", "email", "password", "role", "code"}

	missing := make([]string, 0, len(fields))

	for _, name := range order {
		v, ok := fields[name]

		if ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	return nil
}
