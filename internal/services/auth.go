package services

import (
	"errors"
	"strings"
	"time"

	"github.com/jboilerplate/portal/internal/config"
	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult carries everything the dashboard stores after signing in:
// the bearer token, the CSRF token and the user record.
type LoginResult struct {
	Token     string       `json:"token"`
	CSRFToken string       `json:"csrfToken"`
	ExpireAt  time.Time    `json:"expireAt"`
	User      *models.User `json:"user"`
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where(&models.User{Email: email}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	hours := s.jwtConfig.ExpireHour
	if hours <= 0 {
		hours = 24
	}
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, hours)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return &LoginResult{
		Token:     token,
		CSRFToken: utils.NewCSRFToken(),
		ExpireAt:  now.Add(time.Duration(hours) * time.Hour),
		User:      &user,
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateAdminIfNotExists creates the bootstrap admin account when no admin
// exists yet. Setup completion later replaces its credentials.
func (s *AuthService) CreateAdminIfNotExists(email, password string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where(&models.User{Role: RoleAdmin}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:    strings.ToLower(email),
		Password: hashedPassword,
		Name:     "Administrator",
		Role:     RoleAdmin,
		IsActive: true,
	}
	return s.db.Create(&admin).Error
}
