package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"hiking-backend/models"
	"hiking-backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// UserService registers accounts and issues bearer tokens.
type UserService struct {
	DB        *gorm.DB
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewUserService(db *gorm.DB, secret []byte, ttl time.Duration) *UserService {
	return &UserService{DB: db, JWTSecret: secret, TokenTTL: ttl}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      models.UserSummary `json:"user"`
	IsStaff   bool               `json:"is_staff"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if username == "" {
		fields["username"] = "this field is required"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			fields["email"] = "enter a valid email address"
		}
	}
	if len(fields) > 0 {
		return nil, utils.Validation("invalid registration", fields)
	}

	db := s.DB.WithContext(ctx)
	taken := utils.Validation("a user with that username already exists", map[string]string{"username": "already taken"})

	var existing int64
	if err := db.Model(&models.User{}).Unscoped().Where("username = ?", username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing > 0 {
		return nil, taken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, taken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Login checks the password and signs a token. Unknown user and wrong password look the same.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	invalid := utils.Unauthorized("invalid username or password")

	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}

	token, err := utils.GenerateJWT(s.JWTSecret, s.TokenTTL, user.ID, user.Username, user.IsStaff)
	if err != nil {
		return nil, utils.Internal("failed to sign token", err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.TokenTTL),
		User:      user.Summary(),
		IsStaff:   user.IsStaff,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}
