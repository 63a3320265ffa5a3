package services

import (
	"context"
	"errors"
	"strings"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	mongorepo "github.com/erindhoxha/mern-stack-site/internal/repositories/mongo"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	users  mongorepo.UserRepository
	tokens TokenService
	audit  AuditRecorder
}

func NewAuthService(users mongorepo.UserRepository, tokens TokenService, audit AuditRecorder) AuthService {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &authService{users: users, tokens: tokens, audit: audit}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (string, error) {
	const op = "AuthService.Register"

	email := normalizeEmail(in.Email)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", utils.E(utils.CodeConflict, op, "User already exists", nil)
	case !errors.Is(err, utils.ErrNotFound):
		return "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", utils.Invalid(op, utils.FieldError{Field: "password", Msg: "Please enter a password with 72 or fewer characters"})
	}
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Avatar:   utils.GravatarURL(email),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return "", utils.E(utils.CodeConflict, op, "User already exists", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := s.tokens.Issue(u.ID.Hex())
	if err != nil {
		return "", err
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:     u.ID.Hex(),
		Action:     models.AuditRegister,
		Resource:   "user",
		ResourceID: u.ID.Hex(),
	})
	return token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "AuthService.Login"

	email = normalizeEmail(email)
	invalid := utils.E(utils.CodeInvalidCredentials, op, "Invalid credentials", nil)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.recordFailedLogin(ctx, email)
			return "", invalid
		}
		return "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	ok, err := utils.CheckPassword(u.Password, password)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to compare password", err)
	}
	if !ok {
		s.recordFailedLogin(ctx, email)
		return "", invalid
	}

	token, err := s.tokens.Issue(u.ID.Hex())
	if err != nil {
		return "", err
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:     u.ID.Hex(),
		Action:     models.AuditLogin,
		Resource:   "user",
		ResourceID: u.ID.Hex(),
	})
	return token, nil
}

func (s *authService) recordFailedLogin(ctx context.Context, email string) {
	s.audit.Record(ctx, AuditEntry{
		Action:   models.AuditLoginFailed,
		Resource: "user",
		Metadata: map[string]any{"email": email},
	})
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	const op = "AuthService.Me"

	id, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return u, nil
}
