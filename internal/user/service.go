package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"mshop-be/internal/access"
	"mshop-be/internal/apperror"
	"mshop-be/internal/logger"
	"mshop-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context, q ListQuery) ([]*User, utils.Pagination, error)
	ChangeRole(ctx context.Context, actor access.Actor, targetID uint, role access.Role) (*User, error)
	Delete(ctx context.Context, actor access.Actor, targetID uint) error
}

type service struct {
	repo   Repository
	tokens *TokenManager
}

func NewService(repo Repository, tokens *TokenManager) Service {
	return &service{repo: repo, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Register"))

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, apperror.Internal("hash password", err)
	}

	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         access.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, apperror.Internal("create user", err)
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, apperror.Internal("generate token", err)
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Login"))

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("email not found")
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Internal("find user", err)
	}

	if !CheckPasswordHash(password, u.PasswordHash) {
		log.Info("password not match", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		log.Info("inactive user login attempt", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, apperror.Internal("generate token", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

// Authenticate resolves a bearer token to a live, active user.
func (s *service) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		logger.FromCtx(ctx).Debug("token rejected", zap.Error(err))
		return nil, ErrInvalidToken
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, apperror.Internal("load user", err)
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("load user", err)
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context, q ListQuery) ([]*User, utils.Pagination, error) {
	if q.Role != nil && !q.Role.IsValid() {
		return nil, utils.Pagination{}, ErrInvalidRole
	}

	page, limit := utils.NormalizePage(q.Page, q.Limit)
	users, total, err := s.repo.List(ctx, ListFilter{
		Role:   q.Role,
		Limit:  limit,
		Offset: utils.Offset(page, limit),
	})
	if err != nil {
		return nil, utils.Pagination{}, apperror.Internal("list users", err)
	}

	return users, utils.NewPagination(page, limit, total), nil
}

func (s *service) ChangeRole(ctx context.Context, actor access.Actor, targetID uint, role access.Role) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ChangeRole"),
		zap.Uint("target_id", targetID),
		zap.String("role", string(role)),
	)

	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !access.CanGrantRole(actor, target.Actor(), role) {
		log.Warn("role change denied", zap.String("target_role", string(target.Role)))
		return nil, ErrForbidden
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("update role", err)
	}

	target.Role = role
	log.Info("role changed")
	return target, nil
}

func (s *service) Delete(ctx context.Context, actor access.Actor, targetID uint) error {
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if !access.CanManageUser(actor, target.Actor()) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return apperror.Internal("delete user", err)
	}

	logger.FromCtx(ctx).Info("user deleted", zap.Uint("target_id", targetID))
	return nil
}
