package university

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for university data operations.
type Repository interface {
	// Insert stores a new university.
	Insert(ctx context.Context, u *University) error

	// Update modifies an existing university. Returns ErrNotFound when absent.
	Update(ctx context.Context, u *University) error

	// Delete removes a university. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a university by ID. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*University, error)

	// Search returns universities matching the filter, ordered per
	// Filter.Ordering (name ascending by default).
	Search(ctx context.Context, f Filter) ([]University, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development.
type InMemoryRepository struct {
	mu           sync.RWMutex
	universities map[string]*University
}

// NewInMemoryRepository creates a new in-memory university repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		universities: make(map[string]*University),
	}
}

// Insert stores a new university, assigning an ID and timestamps when missing.
func (r *InMemoryRepository) Insert(ctx context.Context, u *University) error {
	if err := u.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.universities[u.ID] = copyUniversity(u)
	return nil
}

// Update modifies an existing university.
func (r *InMemoryRepository) Update(ctx context.Context, u *University) error {
	if err := u.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.universities[u.ID]
	if !ok {
		return ErrNotFound
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	r.universities[u.ID] = copyUniversity(u)
	return nil
}

// Delete removes a university by ID.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.universities[id]; !ok {
		return ErrNotFound
	}
	delete(r.universities, id)
	return nil
}

// GetByID retrieves a university by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*University, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.universities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUniversity(u), nil
}

// Search returns universities matching the filter, ordered per f.Ordering.
func (r *InMemoryRepository) Search(ctx context.Context, f Filter) ([]University, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []University
	for _, u := range r.universities {
		if f.Matches(u) {
			result = append(result, *copyUniversity(u))
		}
	}

	field, desc := f.sortField()
	sort.Slice(result, func(i, j int) bool {
		a, b := &result[i], &result[j]
		if desc {
			a, b = b, a
		}
		switch field {
		case "rating":
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
		case "location":
			if a.Location != b.Location {
				return a.Location < b.Location
			}
		}
		return a.Name < b.Name
	})
	return result, nil
}

func copyUniversity(u *University) *University {
	uCopy := *u
	if u.Specialties != nil {
		uCopy.Specialties = make([]string, len(u.Specialties))
		copy(uCopy.Specialties, u.Specialties)
	}
	return &uCopy
}
