package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campusorient/discovery-sync/internal/api"
	"github.com/campusorient/discovery-sync/internal/domain/model"
	"github.com/campusorient/discovery-sync/internal/session"
)

// Shared validator instance (reused across all requests).
var validate = validator.New()

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username             string `json:"username"`
	FirstName            string `json:"first_name" validate:"required"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// authResponse tolerates both token field spellings the backends have
// used over time.
type authResponse struct {
	AccessToken string      `json:"access_token"`
	Token       string      `json:"token"`
	User        *model.User `json:"user"`
}

func (r authResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// AuthService drives the login/register/logout round trips and installs
// the resulting session. Requests go out on the public client; the
// caller is not authenticated yet.
type AuthService struct {
	client   *api.Client
	sessions *session.Manager
	logger   *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(client *api.Client, sessions *session.Manager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{client: client, sessions: sessions, logger: logger}
}

// Login exchanges credentials for a token+user pair and stores both
// atomically. Bad inputs fail client-side with the same field-keyed
// error shape a backend rejection would produce.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	req := loginRequest{Email: email, Password: password}
	if err := validateRequest("POST /auth/login", req); err != nil {
		return nil, err
	}

	var resp authResponse
	if err := s.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		s.logger.ErrorContext(ctx, "login failed",
			"error", err, "error_class", api.Classify(err))
		return nil, err
	}
	if resp.token() == "" || resp.User == nil {
		return nil, fmt.Errorf("login response missing token or user")
	}

	if err := s.sessions.Set(ctx, resp.token(), resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Register creates an account and logs the session in. The display
// name splits into first/last on the first space; the username derives
// from the email local part.
func (s *AuthService) Register(ctx context.Context, name, email, password, passwordConfirmation string) (*model.User, error) {
	first, last := splitName(name)
	req := registerRequest{
		Username:             strings.SplitN(email, "@", 2)[0],
		FirstName:            first,
		LastName:             last,
		Email:                email,
		Password:             password,
		PasswordConfirmation: passwordConfirmation,
	}
	if err := validateRequest("POST /auth/register", req); err != nil {
		return nil, err
	}

	var resp authResponse
	if err := s.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		s.logger.ErrorContext(ctx, "register failed",
			"error", err, "error_class", api.Classify(err))
		return nil, err
	}
	if resp.token() == "" || resp.User == nil {
		return nil, fmt.Errorf("register response missing token or user")
	}

	if err := s.sessions.Set(ctx, resp.token(), resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout tears the session down. Safe when already logged out.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// validateRequest runs struct validation and converts failures into the
// field → message shape forms consume.
func validateRequest(endpoint string, req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate request: %w", err)
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[strings.ToLower(fe.Field())] = formatFieldError(fe)
	}
	return &api.ValidationError{Endpoint: endpoint, Fields: fields}
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
