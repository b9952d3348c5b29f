package service

import (
	"fmt"
	"time"

	"github.com/ekomarov/planfact/internal/config"
	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
	"github.com/ekomarov/planfact/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// RateProvider supplies the current key rate used for overdue penalties.
type RateProvider interface {
	GetKeyRate() (float64, error)
}

// Notifier sends reminder and alert mails to users.
type Notifier interface {
	SendOccurrenceReminder(to, username string, scheduledDate time.Time, amount float64, description string, overdue bool) error
	SendCashGapAlert(to, username string, firstGap time.Time, gapDays int, projectedBalance float64) error
}

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	engine *engine.Engine
	log    *logrus.Logger
	config *config.Config
	rates  RateProvider
	mailer Notifier
}

// NewService initializes a new service
func NewService(repo *repository.Repository, eng *engine.Engine, log *logrus.Logger, cfg *config.Config, rates RateProvider, mailer Notifier) *Service {
	return &Service{repo: repo, engine: eng, log: log, config: cfg, rates: rates, mailer: mailer}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, &engine.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
