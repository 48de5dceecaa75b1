package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/vuln-kanban-api/internal/config"
	"github.com/yukikurage/vuln-kanban-api/internal/constants"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
//
// In mock mode every login and signup succeeds after the configured delay,
// creating the user on first sight. In credentials mode passwords are
// checked against bcrypt hashes and no delay is applied.
type AuthService struct {
	userRepo repository.UserRepository
	mode     string
	delay    time.Duration
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, mode string, delay time.Duration) *AuthService {
	if mode != config.AuthModeCredentials {
		mode = config.AuthModeMock
	}
	return &AuthService{
		userRepo: userRepo,
		mode:     mode,
		delay:    delay,
		now:      time.Now,
	}
}

// Mode returns the active auth mode.
func (s *AuthService) Mode() string {
	return s.mode
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Signup registers a user.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if s.mode == config.AuthModeMock {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		return s.findOrCreate(email, input.Name)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := s.newUser(email, input.Name)
	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, ErrFailedToCreateUser
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	if s.mode == config.AuthModeMock {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		return s.findOrCreate(email, "")
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) findOrCreate(email, name string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user = s.newUser(email, name)
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost a race with a concurrent login for the same email.
			return s.userRepo.FindByEmail(email)
		}
		return nil, ErrFailedToCreateUser
	}
	return user, nil
}

func (s *AuthService) newUser(email, name string) *models.User {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	return &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
}

// simulateLatency waits for the configured delay unless ctx ends first.
func (s *AuthService) simulateLatency(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
