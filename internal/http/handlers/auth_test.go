package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comflo/identity/internal/domain/user"
	"github.com/comflo/identity/internal/http/handlers"
	"github.com/comflo/identity/internal/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Keep gin quiet during tests

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.AuthService interface

type fakeAuthService struct {
	registerFn func(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error)
	loginFn    func(ctx context.Context, in identity.LoginInput) (*user.Sanitized, error)
	recoveryFn func(ctx context.Context, email string) (string, error)
	resetFn    func(ctx context.Context, in identity.ResetInput) error
}

func (f *fakeAuthService) Register(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, in)
	}

	return &user.Sanitized{}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, in identity.LoginInput) (*user.Sanitized, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, in)
	}

	return &user.Sanitized{}, nil
}

func (f *fakeAuthService) RequestRecoveryCode(ctx context.Context, email string) (string, error) {
	if f.recoveryFn != nil {
		return f.recoveryFn(ctx, email)
	}

	return "00000", nil
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, in identity.ResetInput) error {
	if f.resetFn != nil {
		return f.resetFn(ctx, in)
	}

	return nil
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope

	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}

	return env
}

func sampleUser() *user.Sanitized {
	now := time.Now().UTC()

	return &user.Sanitized{
		ID:            uuid.NewString(),
		Name:          "Ada Lovelace",
		Email:         "ada@unlv.edu",
		Role:          "student",
		InstitutionID: uuid.NewString(),
		SessionToken:  "session-token",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setUp       func(*fakeAuthService)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "success",
			body: `{"name":"Ada Lovelace","email":"ada@unlv.edu","password":"pw","role":"student"}`,
			setUp: func(f *fakeAuthService) {
				f.registerFn = func(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error) {
					u := sampleUser()
					u.Name = in.Name
					u.Email = in.Email
					return u, nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "missing fields are a 412",
			body: `{"email":"ada@unlv.edu"}`,
			setUp: func(f *fakeAuthService) {
				f.registerFn = func(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error) {
					return nil, &identity.ValidationError{Fields: []string{"name", "password", "role"}}
				}
			},
			wantStatus:  http.StatusPreconditionFailed,
			wantMessage: "missing required fields: name, password, role",
		},
		{
			name: "duplicate email is a 400",
			body: `{"name":"Ada","email":"ada@unlv.edu","password":"pw","role":"student"}`,
			setUp: func(f *fakeAuthService) {
				f.registerFn = func(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error) {
					return nil, &identity.ConflictError{Message: "email already exists"}
				}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "email already exists",
		},
		{
			name: "unknown institution is a 400",
			body: `{"name":"Eve","email":"eve@elsewhere.org","password":"pw","role":"student"}`,
			setUp: func(f *fakeAuthService) {
				f.registerFn = func(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error) {
					return nil, &identity.BusinessRuleError{Message: "institution not found"}
				}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "institution not found",
		},
		{
			name: "unexpected failure gets the generic message",
			body: `{"name":"Ada","email":"ada@unlv.edu","password":"pw","role":"student"}`,
			setUp: func(f *fakeAuthService) {
				f.registerFn = func(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error) {
					return nil, &identity.InternalError{Message: "could not create user"}
				}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Could not create user",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAuthService{}

			if tc.setUp != nil {
				tc.setUp(svc)
			}

			h := handlers.NewAuthHandler(svc, false)
			r := setupRouter(http.MethodPost, "/auth", h.Register)

			w := doJSON(t, r, http.MethodPost, "/auth", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}

			env := decodeEnvelope(t, w)

			if env.Status != tc.wantStatus {
				t.Errorf("envelope status = %d, want %d", env.Status, tc.wantStatus)
			}
			if tc.wantMessage != "" && env.Message != tc.wantMessage {
				t.Errorf("message = %q, want %q", env.Message, tc.wantMessage)
			}
		})
	}
}

func TestRegisterHandlerResponseHasNoSecrets(t *testing.T) {
	svc := &fakeAuthService{
		registerFn: func(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error) {
			return sampleUser(), nil
		},
	}

	h := handlers.NewAuthHandler(svc, false)
	r := setupRouter(http.MethodPost, "/auth", h.Register)

	w := doJSON(t, r, http.MethodPost, "/auth", `{"name":"Ada","email":"ada@unlv.edu","password":"pw","role":"student"}`)

	env := decodeEnvelope(t, w)

	var data map[string]any

	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}

	for _, forbidden := range []string{"passwordHash", "password_hash", "recoveryCodeHash", "recovery_code_hash"} {
		if _, ok := data[forbidden]; ok {
			t.Errorf("response leaks %q", forbidden)
		}
	}

	if data["token"] != "session-token" {
		t.Errorf("token = %v, want the session token", data["token"])
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name        string
		setUp       func(*fakeAuthService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "success",
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown user is a 404",
			setUp: func(f *fakeAuthService) {
				f.loginFn = func(ctx context.Context, in identity.LoginInput) (*user.Sanitized, error) {
					return nil, &identity.NotFoundError{Message: "user not found"}
				}
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "user not found",
		},
		{
			name: "wrong password is a 401",
			setUp: func(f *fakeAuthService) {
				f.loginFn = func(ctx context.Context, in identity.LoginInput) (*user.Sanitized, error) {
					return nil, &identity.AuthenticationError{Message: "wrong password"}
				}
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "wrong password",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAuthService{}

			if tc.setUp != nil {
				tc.setUp(svc)
			}

			h := handlers.NewAuthHandler(svc, false)
			r := setupRouter(http.MethodPost, "/auth/login", h.Login)

			w := doJSON(t, r, http.MethodPost, "/auth/login", `{"email":"ada@unlv.edu","password":"pw"}`)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}

			env := decodeEnvelope(t, w)

			if tc.wantMessage != "" && env.Message != tc.wantMessage {
				t.Errorf("message = %q, want %q", env.Message, tc.wantMessage)
			}
		})
	}
}

func TestRecoveryCodeHandler(t *testing.T) {
	t.Run("default mode keeps the code out of the response", func(t *testing.T) {
		svc := &fakeAuthService{
			recoveryFn: func(ctx context.Context, email string) (string, error) {
				return "54321", nil
			},
		}

		h := handlers.NewAuthHandler(svc, false)
		r := setupRouter(http.MethodPost, "/auth/token", h.RequestRecoveryCode)

		w := doJSON(t, r, http.MethodPost, "/auth/token", `{"email":"ada@unlv.edu"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}

		env := decodeEnvelope(t, w)

		if string(env.Data) != "null" {
			t.Errorf("data = %s, want null", env.Data)
		}
	})

	t.Run("legacy mode returns the plaintext code", func(t *testing.T) {
		svc := &fakeAuthService{
			recoveryFn: func(ctx context.Context, email string) (string, error) {
				return "54321", nil
			},
		}

		h := handlers.NewAuthHandler(svc, true)
		r := setupRouter(http.MethodPost, "/auth/token", h.RequestRecoveryCode)

		w := doJSON(t, r, http.MethodPost, "/auth/token", `{"email":"ada@unlv.edu"}`)

		env := decodeEnvelope(t, w)

		if string(env.Data) != `"54321"` {
			t.Errorf("data = %s, want the code", env.Data)
		}
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		svc := &fakeAuthService{
			recoveryFn: func(ctx context.Context, email string) (string, error) {
				return "", &identity.NotFoundError{Message: "user not found"}
			},
		}

		h := handlers.NewAuthHandler(svc, false)
		r := setupRouter(http.MethodPost, "/auth/token", h.RequestRecoveryCode)

		w := doJSON(t, r, http.MethodPost, "/auth/token", `{"email":"nobody@unlv.edu"}`)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	})
}

func TestResetPasswordHandler(t *testing.T) {
	tests := []struct {
		name        string
		setUp       func(*fakeAuthService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "success has an empty data payload",
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong code is a 401",
			setUp: func(f *fakeAuthService) {
				f.resetFn = func(ctx context.Context, in identity.ResetInput) error {
					return &identity.AuthenticationError{Message: "wrong recovery code"}
				}
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "wrong recovery code",
		},
		{
			name: "missing code is a 412",
			setUp: func(f *fakeAuthService) {
				f.resetFn = func(ctx context.Context, in identity.ResetInput) error {
					return &identity.ValidationError{Fields: []string{"code"}}
				}
			},
			wantStatus:  http.StatusPreconditionFailed,
			wantMessage: "missing required fields: code",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAuthService{}

			if tc.setUp != nil {
				tc.setUp(svc)
			}

			h := handlers.NewAuthHandler(svc, false)
			r := setupRouter(http.MethodPost, "/auth/reset-pass", h.ResetPassword)

			w := doJSON(t, r, http.MethodPost, "/auth/reset-pass", `{"email":"ada@unlv.edu","password":"new","code":"54321"}`)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}

			env := decodeEnvelope(t, w)

			if tc.wantMessage != "" && env.Message != tc.wantMessage {
				t.Errorf("message = %q, want %q", env.Message, tc.wantMessage)
			}

			if tc.wantStatus == http.StatusOK && string(env.Data) != "null" {
				t.Errorf("data = %s, want null", env.Data)
			}
		})
	}
}
