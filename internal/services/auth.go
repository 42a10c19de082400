package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkessler/taskhub/internal/config"
	"github.com/mkessler/taskhub/internal/models"
	"github.com/mkessler/taskhub/internal/utils"
	"github.com/mkessler/taskhub/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type RegisterRequest struct {
	FullName         string `json:"fullname" binding:"required,max=150"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	RepeatedPassword string `json:"repeated_password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the payload returned by register and login.
type AuthResponse struct {
	Token    string `json:"token"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	UserID   uint   `json:"user_id"`
}

// UserBrief is the minimal record returned by the email lookup.
type UserBrief struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullname"`
}

// Register creates a new account and returns a bearer token for it.
// The email is unique case-insensitively; it is stored lowercased.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.RepeatedPassword {
		return nil, response.NewBadRequest("repeated_password: passwords do not match")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Unscoped: the unique index still holds soft-deleted accounts, so the
	// check must see them too or the insert fails with a raw driver error.
	var count int64
	if err := s.db.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewBadRequest("email: this email address is already in use")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		Password: hashed,
		FullName: req.FullName,
		Role:     "user",
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return s.issueToken(&user)
}

// Login authenticates by case-insensitive email and password.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewBadRequest("invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, response.NewBadRequest("invalid credentials")
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewBadRequest("invalid credentials")
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	return s.issueToken(&user)
}

func (s *AuthService) issueToken(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:    token,
		FullName: user.FullName,
		Email:    user.Email,
		UserID:   user.ID,
	}, nil
}

// CheckEmail resolves an email to a minimal user record.
func (s *AuthService) CheckEmail(email string) (*UserBrief, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, response.NewBadRequest("email query parameter required")
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("no user with this email")
		}
		return nil, err
	}

	return &UserBrief{ID: user.ID, Email: user.Email, FullName: user.FullName}, nil
}

// GetUserByID retrieves a user by ID.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAdminIfNotExists creates the default admin account on first boot.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword("admin")
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Email:    "admin@taskhub.local",
		Password: hashed,
		FullName: "Administrator",
		Role:     "admin",
		IsActive: true,
	}
	return s.db.Create(&admin).Error
}
