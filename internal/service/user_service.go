package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-service/internal/auth"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// UserService manages platform accounts. Listing and mutation require the
// manage-users capability; technician lookup is open to anyone who can
// assign work.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	now        func() time.Time
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, now: time.Now}
}

// CreateUserInput carries account fields for registration.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput carries optional account changes.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
}

var validRoles = map[domain.Role]struct{}{
	domain.RoleEmployee:              {},
	domain.RoleFacilityManager:       {},
	domain.RoleMaintenanceTechnician: {},
	domain.RoleOperationsManager:     {},
	domain.RoleAdmin:                 {},
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanManageUsers }, "role cannot manage users"); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		details["email"] = "valid email required"
	}
	if len(input.Password) < 8 {
		details["password"] = "minimum 8 characters"
	}
	if _, ok := validRoles[input.Role]; !ok {
		details["role"] = "unknown value"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user input", details)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser changes account fields; nil pointers are left untouched.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanManageUsers }, "role cannot manage users"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	next := user.Clone()
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("invalid user input", map[string]any{"name": "required"})
		}
		next.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, apperrors.NewValidationError("invalid user input", map[string]any{"email": "valid email required"})
		}
		next.Email = email
	}
	if input.Role != nil {
		if _, ok := validRoles[*input.Role]; !ok {
			return nil, apperrors.NewValidationError("invalid user input", map[string]any{"role": "unknown value"})
		}
		next.Role = *input.Role
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, apperrors.NewValidationError("invalid user input", map[string]any{"password": "minimum 8 characters"})
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		next.PasswordHash = hash
	}
	next.UpdatedAt = s.now()
	if err := s.users.Update(ctx, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	return next, nil
}

// GetUser fetches one account.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanManageUsers }, "role cannot manage users"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns accounts, optionally filtered by role or search term.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanManageUsers }, "role cannot manage users"); err != nil {
		return nil, err
	}
	list, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ListTechnicians returns maintenance technicians for assignment pickers.
// Open to any actor who can assign work.
func (s *UserService) ListTechnicians(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := requireCapability(actor, func(c domain.Capabilities) bool { return c.CanAssignTechnician }, "role cannot assign technicians"); err != nil {
		return nil, err
	}
	role := domain.RoleMaintenanceTechnician
	list, err := s.users.List(ctx, repository.UserFilter{Role: &role})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}
