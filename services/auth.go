package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/DeusGroup/SalesLeaderboard/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords
// so login failures don't leak which half was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService checks admin credentials. With a database it reads the admin
// table; without one it keeps the single seeded admin in memory, matching
// the store fallback.
type AuthService struct {
	DB       *gorm.DB
	fallback *models.Admin
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// SeedDefaultAdmin makes sure at least one admin account exists. Existing
// accounts are never overwritten.
func (s *AuthService) SeedDefaultAdmin(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if s.DB == nil {
		s.fallback = &models.Admin{ID: 1, Username: username, Password: string(hash)}
		log.Printf("[AUTH] Seeded in-memory admin %q", username)
		return nil
	}

	var existing models.Admin
	err = s.DB.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin %q: %w", username, err)
	}

	admin := models.Admin{Username: username, Password: string(hash)}
	if err := s.DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin %q: %w", username, err)
	}
	log.Printf("[AUTH] Seeded admin account %q", username)
	return nil
}

// Authenticate returns the admin record when username and password match.
func (s *AuthService) Authenticate(username, password string) (*models.Admin, error) {
	admin, err := s.getByUsername(username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *AuthService) getByUsername(username string) (*models.Admin, error) {
	if s.DB == nil {
		if s.fallback != nil && s.fallback.Username == username {
			a := *s.fallback
			return &a, nil
		}
		return nil, ErrInvalidCredentials
	}

	var admin models.Admin
	err := s.DB.Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin %q: %w", username, err)
	}
	return &admin, nil
}
