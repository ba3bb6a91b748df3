package services

import (
	"testing"

	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDefaultsAndHashing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	user, err := svc.CreateUser(UserInput{
		Email:    "Staff@Example.com",
		Password: "secret-password",
		FullName: "Nueva Vendedora",
	})
	require.NoError(t, err)

	assert.Equal(t, "staff@example.com", user.Email)
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret-password", user.PasswordHash)
	assert.True(t, user.CheckPassword("secret-password"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserInvalidRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.CreateUser(UserInput{Email: "x@example.com", Password: "secret-password", Role: "OWNER"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.CreateUser(UserInput{Email: "admin@example.com", Password: "secret-password", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.CreateUser(UserInput{Email: "ADMIN@example.com", Password: "other-password"})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestGetUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	created, err := svc.CreateUser(UserInput{Email: "admin@example.com", Password: "secret-password"})
	require.NoError(t, err)

	found, err := svc.GetUserByEmail("Admin@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetUserByEmail("missing@example.com")
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
