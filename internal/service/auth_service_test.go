package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/transfer"
)

func TestRegister(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), &transfer.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), &transfer.RegisterRequest{
		Name:     " ",
		Email:    "not-an-email",
		Password: "short",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), &transfer.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &transfer.RegisterRequest{
		Name: "Other Jane", Email: "jane@example.com", Password: "differentpass",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Register(context.Background(), &transfer.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), &transfer.LoginRequest{
		Email: "jane@example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Name)

	_, err = svc.Login(context.Background(), &transfer.LoginRequest{
		Email: "jane@example.com", Password: "wrongpass",
	})
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), &transfer.LoginRequest{
		Email: "nobody@example.com", Password: "supersecret",
	})
	assert.Error(t, err)
}
