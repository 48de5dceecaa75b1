package repository

import (
	"strings"
	"sync"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
)

// MemoryUserRepository keeps registered users for the lifetime of the process.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

// NewUserRepository creates a new UserRepository
func NewUserRepository() UserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

// Create creates a new user
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrDuplicateEmail
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[key] = &stored
	return nil
}

// FindByID finds a user by ID
func (r *MemoryUserRepository) FindByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *user
	return &found, nil
}

// FindByEmail finds a user by email, ignoring case
func (r *MemoryUserRepository) FindByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
