package services

import (
	"testing"
	"time"

	"github.com/gahan/book-inventory-backend/internal/config"
	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/gahan/book-inventory-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-jwt-secret",
		ActivationSecret:  "test-activation-secret",
		ActivationTimeout: 3 * 24 * time.Hour,
		BaseURL:           "http://localhost:8080",
	}
}

func newTestAuthService(db *gorm.DB) *AuthService {
	// nil email service: registration must succeed even when mail is down
	return NewAuthService(db, testAuthConfig(), nil)
}

func TestRegisterCreatesInactiveUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user, err := svc.Register(RegisterRequest{
		Username: "paul",
		Password: "atreides123",
		Email:    "paul@arrakis.org",
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive, "registration must create a disabled account")
	assert.NotEqual(t, "atreides123", user.Password, "password must be stored hashed")
	assert.True(t, user.CheckPassword("atreides123"))

	_, err = svc.Register(RegisterRequest{
		Username: "paul",
		Password: "different123",
		Email:    "other@arrakis.org",
	})
	assert.Error(t, err, "duplicate username must be rejected")
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.Register(RegisterRequest{Username: "paul", Password: "atreides123", Email: "not-an-email"})
	assert.Error(t, err)

	_, err = svc.Register(RegisterRequest{Username: "paul", Password: "short", Email: "paul@arrakis.org"})
	assert.Error(t, err)

	_, err = svc.Register(RegisterRequest{Username: "p!", Password: "atreides123", Email: "paul@arrakis.org"})
	assert.Error(t, err)
}

func TestActivateFlipsActiveExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user, err := svc.Register(RegisterRequest{
		Username: "paul",
		Password: "atreides123",
		Email:    "paul@arrakis.org",
	})
	require.NoError(t, err)

	token := utils.MakeActivationToken(user, testAuthConfig().ActivationSecret)

	require.NoError(t, svc.Activate(user.ID, token))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.IsActive)

	// The same link is dead after activation consumed it
	err = svc.Activate(user.ID, token)
	assert.ErrorIs(t, err, ErrInvalidActivation)
}

func TestActivateRejectsBadTokens(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user, err := svc.Register(RegisterRequest{
		Username: "paul",
		Password: "atreides123",
		Email:    "paul@arrakis.org",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Activate(user.ID, "garbage"), ErrInvalidActivation)
	assert.ErrorIs(t, svc.Activate(user.ID, ""), ErrInvalidActivation)
	assert.ErrorIs(t, svc.Activate(9999, utils.MakeActivationToken(user, "test-activation-secret")), ErrInvalidActivation)

	// Token minted with the wrong secret
	badToken := utils.MakeActivationToken(user, "wrong-secret")
	assert.ErrorIs(t, svc.Activate(user.ID, badToken), ErrInvalidActivation)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestLoginRequiresActivation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user, err := svc.Register(RegisterRequest{
		Username: "paul",
		Password: "atreides123",
		Email:    "paul@arrakis.org",
	})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Username: "paul", Password: "atreides123"})
	assert.ErrorIs(t, err, ErrAccountNotActive)

	token := utils.MakeActivationToken(user, testAuthConfig().ActivationSecret)
	require.NoError(t, svc.Activate(user.ID, token))

	resp, err := svc.Login(LoginRequest{Username: "paul", Password: "atreides123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)

	_, err = svc.Login(LoginRequest{Username: "paul", Password: "wrongpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "atreides123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	user := seedUser(t, db, "paul", true)

	err := svc.ChangePassword(user.ID, ChangePasswordRequest{
		CurrentPassword:    "wrong",
		NewPassword:        "newpassword1",
		ConfirmNewPassword: "newpassword1",
	})
	assert.Error(t, err)

	err = svc.ChangePassword(user.ID, ChangePasswordRequest{
		CurrentPassword:    "password123",
		NewPassword:        "newpassword1",
		ConfirmNewPassword: "mismatch",
	})
	assert.Error(t, err)

	err = svc.ChangePassword(user.ID, ChangePasswordRequest{
		CurrentPassword:    "password123",
		NewPassword:        "newpassword1",
		ConfirmNewPassword: "newpassword1",
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.CheckPassword("newpassword1"))
	assert.False(t, stored.CheckPassword("password123"))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	user := seedUser(t, db, "paul", true)

	resp, err := svc.Login(LoginRequest{Username: "paul", Password: "password123"})
	require.NoError(t, err)

	err = svc.ChangePassword(user.ID, ChangePasswordRequest{
		CurrentPassword:    "password123",
		NewPassword:        "newpassword1",
		ConfirmNewPassword: "newpassword1",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(RefreshRequest{RefreshToken: resp.Token.RefreshToken})
	assert.Error(t, err, "refresh tokens must be revoked after a password change")
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	seedUser(t, db, "paul", true)

	resp, err := svc.Login(LoginRequest{Username: "paul", Password: "password123"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(RefreshRequest{RefreshToken: resp.Token.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.Token.AccessToken)

	// The old refresh token is single-use
	_, err = svc.RefreshToken(RefreshRequest{RefreshToken: resp.Token.RefreshToken})
	assert.Error(t, err)
}
