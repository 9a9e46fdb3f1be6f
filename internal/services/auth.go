package services

import (
	"errors"
	"time"

	"github.com/gahan/book-inventory-backend/internal/config"
	"github.com/gahan/book-inventory-backend/internal/models"
	"github.com/gahan/book-inventory-backend/internal/utils"
	"github.com/gahan/book-inventory-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidActivation  = errors.New("invalid verification link")
	ErrAccountNotActive   = errors.New("account is not activated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService struct {
	db           *gorm.DB
	cfg          *config.Config
	emailService *EmailService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, emailService *EmailService) *AuthService {
	return &AuthService{
		db:           db,
		cfg:          cfg,
		emailService: emailService,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

type AuthResponse struct {
	Token utils.TokenPair `json:"tokens"`
	User  models.User     `json:"user"`
}

// Register creates a disabled user and mails an activation link. The user
// cannot log in until the link is confirmed.
func (s *AuthService) Register(req RegisterRequest) (*models.User, error) {
	if !utils.IsValidUsername(req.Username) {
		return nil, errors.New("invalid username")
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}
	if !utils.IsValidPassword(req.Password) {
		return nil, errors.New("password must be at least 8 characters")
	}

	var existingUser models.User
	if err := s.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("user already exists")
	}

	user := models.User{
		Username: utils.SanitizeString(req.Username),
		Email:    utils.SanitizeString(req.Email),
		Password: req.Password, // Will be hashed in BeforeCreate hook
		IsActive: false,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, errors.New("failed to create user")
	}

	token := utils.MakeActivationToken(&user, s.cfg.ActivationSecret)

	if s.emailService != nil {
		if err := s.emailService.SendActivationEmail(&user, token); err != nil {
			logger.Error("Failed to send activation email: ", err)
		}
	}

	return &user, nil
}

// Activate verifies the token against the user's current state and flips
// the account active. Flipping the flag changes the state the signature
// covers, so a second use of the same link fails.
func (s *AuthService) Activate(userID uint, token string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidActivation
		}
		return err
	}

	if !utils.CheckActivationToken(&user, token, s.cfg.ActivationSecret, s.cfg.ActivationTimeout) {
		return ErrInvalidActivation
	}

	if err := s.db.Model(&user).Update("is_active", true).Error; err != nil {
		return errors.New("failed to activate user")
	}

	return nil
}

func (s *AuthService) Login(req LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountNotActive
	}

	// Revoke all existing refresh tokens for this user
	s.db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("is_revoked", true)

	tokenPair, err := utils.GenerateTokenPair(user.ID, user.Username, s.cfg.JWTSecret)
	if err != nil {
		return nil, errors.New("failed to generate tokens")
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: time.Unix(tokenPair.RefreshTokenExpiresAt, 0),
		IsRevoked: false,
	}

	if err := s.db.Create(&refreshToken).Error; err != nil {
		return nil, errors.New("failed to store refresh token")
	}

	return &AuthResponse{
		Token: *tokenPair,
		User:  user,
	}, nil
}

func (s *AuthService) RefreshToken(req RefreshRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken, s.cfg.JWTSecret)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	if claims.Type != string(utils.RefreshToken) {
		return nil, errors.New("invalid token type")
	}

	var refreshToken models.RefreshToken
	if err := s.db.Where("token = ? AND is_revoked = ? AND expires_at > ?", req.RefreshToken, false, time.Now()).
		First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found or expired")
		}
		return nil, err
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", refreshToken.UserID, true).
		First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}

	// Transactional revoke and new insert
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	refreshToken.IsRevoked = true
	if err := tx.Save(&refreshToken).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to revoke old token")
	}

	tokenPair, err := utils.GenerateTokenPair(user.ID, user.Username, s.cfg.JWTSecret)
	if err != nil {
		tx.Rollback()
		return nil, errors.New("failed to generate new tokens")
	}

	newRefresh := models.RefreshToken{
		UserID:    user.ID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: time.Unix(tokenPair.RefreshTokenExpiresAt, 0),
		IsRevoked: false,
	}

	if err := tx.Create(&newRefresh).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to store new refresh token")
	}

	tx.Commit()

	return &AuthResponse{
		Token: *tokenPair,
		User:  user,
	}, nil
}

func (s *AuthService) Logout(refreshToken string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token = ?", refreshToken).
		Update("is_revoked", true).Error
}

func (s *AuthService) ChangePassword(userID uint, req ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmNewPassword {
		return errors.New("new passwords do not match")
	}
	if !utils.IsValidPassword(req.NewPassword) {
		return errors.New("password must be at least 8 characters")
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return errors.New("current password is incorrect")
	}

	if err := user.UpdatePassword(req.NewPassword); err != nil {
		return errors.New("failed to update password")
	}

	if err := s.db.Save(&user).Error; err != nil {
		return errors.New("failed to save new password")
	}

	// Changing the password invalidates every open session
	s.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", user.ID).
		Update("is_revoked", true)

	if s.emailService != nil {
		if err := s.emailService.SendPasswordChangedEmail(&user); err != nil {
			logger.Error("Failed to send password change notification: ", err)
		}
	}

	return nil
}

func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
