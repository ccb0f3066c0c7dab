package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for user data operations.
type Repository interface {
	// Insert stores a new user. Returns ErrEmailTaken on duplicate email.
	Insert(ctx context.Context, u *User) error

	// Update modifies an existing user. Returns ErrNotFound when absent and
	// ErrEmailTaken when the new email belongs to another account.
	Update(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by normalized email. Returns ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// InMemoryRepository is an in-memory implementation of Repository and
// SavedItemsRepository. Used for testing and development.
type InMemoryRepository struct {
	mu                sync.RWMutex
	byID              map[string]*User
	byEmail           map[string]string // normalized email -> id
	savedPrograms     map[string][]string
	savedUniversities map[string][]string
}

// NewInMemoryRepository creates a new in-memory user repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:              make(map[string]*User),
		byEmail:           make(map[string]string),
		savedPrograms:     make(map[string][]string),
		savedUniversities: make(map[string][]string),
	}
}

// Insert stores a new user, assigning an ID and timestamps when missing.
func (r *InMemoryRepository) Insert(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email := NormalizeEmail(u.Email)
	if _, exists := r.byEmail[email]; exists {
		return ErrEmailTaken
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.Email = email

	userCopy := *u
	r.byID[u.ID] = &userCopy
	r.byEmail[email] = u.ID
	return nil
}

// Update modifies an existing user, re-indexing the email when it changed.
func (r *InMemoryRepository) Update(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.ID]
	if !ok {
		return ErrNotFound
	}

	email := NormalizeEmail(u.Email)
	if owner, taken := r.byEmail[email]; taken && owner != u.ID {
		return ErrEmailTaken
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	u.Email = email

	delete(r.byEmail, NormalizeEmail(existing.Email))
	userCopy := *u
	r.byID[u.ID] = &userCopy
	r.byEmail[email] = u.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	userCopy := *r.byID[id]
	return &userCopy, nil
}
