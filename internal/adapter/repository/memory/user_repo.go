package memory

import (
	"context"
	"slices"
	"sync"

	domain "user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
)

const entityName = "User"

// UserRepo is a process-scoped user store. Records live in a map keyed by id
// and an id slice keeps insertion order.
type UserRepo struct {
	mu    sync.RWMutex
	items map[string]domain.User
	order []string
}

// NewUserRepo creates an empty in-memory user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		items: make(map[string]domain.User),
	}
}

// Create inserts a new user.
func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[u.ID]; exists {
		return pkgerrors.NewDuplicateEntityError(entityName, "id")
	}

	r.items[u.ID] = *u
	r.order = append(r.order, u.ID)
	return nil
}

// GetByID returns a copy of the user with the given id.
func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, pkgerrors.NewEntityNotFoundError(entityName, id)
	}
	return &u, nil
}

// GetByEmail returns the user with the given email, or nil when there is none.
// The comparison is case-sensitive.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.items[id]; u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

// Update replaces the stored record in place, keeping its position.
func (r *UserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[u.ID]; !ok {
		return pkgerrors.NewEntityNotFoundError(entityName, u.ID)
	}
	r.items[u.ID] = *u
	return nil
}

// Delete removes the user with the given id.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return pkgerrors.NewEntityNotFoundError(entityName, id)
	}
	delete(r.items, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}

// List returns every user in insertion order.
func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.items[id])
	}
	return users, nil
}

// Len returns the number of stored users.
func (r *UserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
