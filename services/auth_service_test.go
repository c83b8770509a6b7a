package services

import (
	"context"
	"testing"
	"time"

	"restaurant/entity"
	"restaurant/pkg/testdb"
	"restaurant/repository"
	"restaurant/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	db := testdb.Open(t)
	repo := repository.NewUserRepository(db)
	return NewAuthService(repo, testSecret, 7*24*time.Hour, zap.NewNop()), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, " Ada ", "Ada@Example.com ", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.User.Name)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, entity.RoleCustomer, res.User.Role)
	assert.NotEqual(t, "abcdef", res.User.Password)

	claims, err := utils.ParseToken(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, entity.RoleCustomer, claims.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	stored, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, stored.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Bob", "bob@example.com", "abcde")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.True(t, IsValidation(err))

	for _, in := range [][3]string{
		{"", "bob@example.com", "abcdef"},
		{"Bob", "  ", "abcdef"},
		{"Bob", "bob@example.com", ""},
	} {
		_, err := svc.Register(ctx, in[0], in[1], in[2])
		assert.ErrorIs(t, err, ErrMissingRegisterFields, "%v", in)
	}

	_, err = svc.Register(ctx, "Bob", "bob@example.com", "abcdef")
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Cy", "cy@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Cy Again", "CY@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	n, err := repo.CountByEmail(ctx, "cy@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Dee", "dee@example.com", "hunter22")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "DEE@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, "dee@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "hunter22")
	assert.ErrorIs(t, err, ErrMissingLoginFields)
}

func TestGetProfile(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Eve", "eve@example.com", "password")
	require.NoError(t, err)

	u, err := svc.GetProfile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "eve@example.com", u.Email)

	_, err = svc.GetProfile(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
