package user

import "context"

// SavedItemsRepository manages a user's bookmarked catalog entries. Saving is
// idempotent and removal of an entry that was never saved is a no-op; lists
// come back in the order the entries were saved.
type SavedItemsRepository interface {
	SaveProgram(ctx context.Context, userID, programID string) error
	RemoveProgram(ctx context.Context, userID, programID string) error
	ListSavedPrograms(ctx context.Context, userID string) ([]string, error)

	SaveUniversity(ctx context.Context, userID, universityID string) error
	RemoveUniversity(ctx context.Context, userID, universityID string) error
	ListSavedUniversities(ctx context.Context, userID string) ([]string, error)
}

// SaveProgram bookmarks a program for the user.
func (r *InMemoryRepository) SaveProgram(ctx context.Context, userID, programID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedPrograms[userID] = appendUnique(r.savedPrograms[userID], programID)
	return nil
}

// RemoveProgram drops a program bookmark for the user.
func (r *InMemoryRepository) RemoveProgram(ctx context.Context, userID, programID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedPrograms[userID] = removeID(r.savedPrograms[userID], programID)
	return nil
}

// ListSavedPrograms returns the user's bookmarked program IDs in save order.
func (r *InMemoryRepository) ListSavedPrograms(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.savedPrograms[userID]))
	copy(ids, r.savedPrograms[userID])
	return ids, nil
}

// SaveUniversity bookmarks a university for the user.
func (r *InMemoryRepository) SaveUniversity(ctx context.Context, userID, universityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedUniversities[userID] = appendUnique(r.savedUniversities[userID], universityID)
	return nil
}

// RemoveUniversity drops a university bookmark for the user.
func (r *InMemoryRepository) RemoveUniversity(ctx context.Context, userID, universityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedUniversities[userID] = removeID(r.savedUniversities[userID], universityID)
	return nil
}

// ListSavedUniversities returns the user's bookmarked university IDs in save
// order.
func (r *InMemoryRepository) ListSavedUniversities(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.savedUniversities[userID]))
	copy(ids, r.savedUniversities[userID])
	return ids, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
