package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/pkg/jwt"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,strong_password"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager staff"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	// Register creates a user. caller is nil for anonymous sign-ups, which
	// always get the staff role.
	Register(ctx context.Context, caller *Actor, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Me(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	// Authenticate turns a bearer token into the current actor.
	Authenticate(ctx context.Context, token string) (*Actor, error)
	ResetPassword(ctx context.Context, email, password string) error
}

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, Internal(err)
	}
	return &AuthResult{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) Register(ctx context.Context, caller *Actor, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validate(&in); err != nil {
		return nil, err
	}

	role := model.RoleStaff
	if in.Role != "" {
		if caller == nil || !caller.Role.Has(model.PrivUserAssignRole) {
			return nil, Forbidden("Only admins can assign roles")
		}
		role, _ = model.ParseRole(in.Role)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, Internal(err)
	}
	if exists {
		return nil, Conflict("User already exists")
	}

	user := &model.User{Username: in.Username, Email: in.Email, Role: role}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, Internal(err)
	}
	if caller != nil {
		user.Stamp(caller.auditID())
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, Conflict("User already exists")
		}
		return nil, Internal(err)
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate(&in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorized("Invalid credentials")
		}
		return nil, Internal(err)
	}
	if !user.CheckPassword(in.Password) {
		return nil, Unauthorized("Invalid credentials")
	}

	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, asAppError(notFoundOr(err, "User not found"))
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Actor, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, Unauthorized("Invalid or expired token")
	}

	// the stored role wins over the one baked into the token
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorized("User not found")
		}
		return nil, Internal(err)
	}
	return &Actor{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, password string) error {
	if len(password) < 6 {
		return Invalid("password", "min", "must be at least 6 characters")
	}
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return asAppError(notFoundOr(err, "User not found"))
	}
	if err := user.SetPassword(password); err != nil {
		return Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return Internal(err)
	}
	return nil
}
