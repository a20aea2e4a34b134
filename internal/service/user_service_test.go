package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

func newUserFixture(t *testing.T) (*UserService, *domain.User, *domain.User) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	admin := &domain.User{ID: "USR009", Name: "Admin User", Email: "admin@example.com", Role: domain.RoleAdmin}
	manager := &domain.User{ID: "USR002", Name: "Bob Smith", Email: "bob.s@example.com", Role: domain.RoleFacilityManager}
	require.NoError(t, users.Create(context.Background(), admin))
	require.NoError(t, users.Create(context.Background(), manager))
	return NewUserService(users, 4), admin, manager
}

func TestCreateUserRequiresManageUsers(t *testing.T) {
	svc, _, manager := newUserFixture(t)

	_, err := svc.CreateUser(context.Background(), manager, CreateUserInput{
		Name: "Grace Hall", Email: "grace.h@example.com", Password: "Password123!", Role: domain.RoleEmployee,
	})
	assertForbidden(t, err)
}

func TestCreateUserValidatesAndHashes(t *testing.T) {
	svc, admin, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, admin, CreateUserInput{Name: "x", Email: "bad", Password: "short", Role: "Visitor"})
	assert.True(t, apperrors.IsValidation(err))

	user, err := svc.CreateUser(ctx, admin, CreateUserInput{
		Name: "Grace Hall", Email: "Grace.H@Example.com", Password: "Password123!", Role: domain.RoleMaintenanceTechnician,
	})
	require.NoError(t, err)
	assert.Equal(t, "grace.h@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Password123!", user.PasswordHash)

	_, err = svc.CreateUser(ctx, admin, CreateUserInput{
		Name: "Duplicate", Email: "grace.h@example.com", Password: "Password123!", Role: domain.RoleEmployee,
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestUpdateUserChangesRole(t *testing.T) {
	svc, admin, manager := newUserFixture(t)
	ctx := context.Background()

	newRole := domain.RoleOperationsManager
	updated, err := svc.UpdateUser(ctx, admin, manager.ID, UpdateUserInput{Role: &newRole})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperationsManager, updated.Role)

	_, err = svc.UpdateUser(ctx, admin, "USR999", UpdateUserInput{Role: &newRole})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListTechniciansScopedToAssigners(t *testing.T) {
	svc, admin, manager := newUserFixture(t)
	ctx := context.Background()

	tech, err := svc.CreateUser(ctx, admin, CreateUserInput{
		Name: "John Doe", Email: "john.d@example.com", Password: "Password123!", Role: domain.RoleMaintenanceTechnician,
	})
	require.NoError(t, err)

	list, err := svc.ListTechnicians(ctx, manager)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tech.ID, list[0].ID)

	employee := &domain.User{ID: "USR100", Role: domain.RoleEmployee}
	_, err = svc.ListTechnicians(ctx, employee)
	assertForbidden(t, err)
}
