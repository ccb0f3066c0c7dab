package program

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for program data operations.
type Repository interface {
	// Insert stores a new program.
	Insert(ctx context.Context, p *Program) error

	// Update modifies an existing program. Returns ErrNotFound when absent.
	Update(ctx context.Context, p *Program) error

	// Delete removes a program. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a program by ID. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*Program, error)

	// Search returns programs matching the filter, ordered per Filter.Sort
	// (name ascending by default).
	Search(ctx context.Context, f Filter) ([]Program, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	programs map[string]*Program
}

// NewInMemoryRepository creates a new in-memory program repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		programs: make(map[string]*Program),
	}
}

// Insert stores a new program, assigning an ID and timestamps when missing.
func (r *InMemoryRepository) Insert(ctx context.Context, p *Program) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	r.programs[p.ID] = copyProgram(p)
	return nil
}

// Update modifies an existing program.
func (r *InMemoryRepository) Update(ctx context.Context, p *Program) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.programs[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	r.programs[p.ID] = copyProgram(p)
	return nil
}

// Delete removes a program by ID.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.programs[id]; !ok {
		return ErrNotFound
	}
	delete(r.programs, id)
	return nil
}

// GetByID retrieves a program by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.programs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyProgram(p), nil
}

// Search returns programs matching the filter, ordered per f.Sort.
func (r *InMemoryRepository) Search(ctx context.Context, f Filter) ([]Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Program
	for _, p := range r.programs {
		if f.Matches(p) {
			result = append(result, *copyProgram(p))
		}
	}
	sortPrograms(result, f.Sort)
	return result, nil
}

// sortPrograms orders programs in place. Unknown tuitions sort last when
// ordering by tuition.
func sortPrograms(programs []Program, order string) {
	switch order {
	case SortNameDesc:
		sort.Slice(programs, func(i, j int) bool {
			return programs[i].Name > programs[j].Name
		})
	case SortTuition:
		sort.Slice(programs, func(i, j int) bool {
			a, b := programs[i].Tuition, programs[j].Tuition
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			case *a != *b:
				return *a < *b
			}
			return programs[i].Name < programs[j].Name
		})
	default:
		sort.Slice(programs, func(i, j int) bool {
			return programs[i].Name < programs[j].Name
		})
	}
}

func copyProgram(p *Program) *Program {
	pCopy := *p
	if p.Tuition != nil {
		tuition := *p.Tuition
		pCopy.Tuition = &tuition
	}
	return &pCopy
}
