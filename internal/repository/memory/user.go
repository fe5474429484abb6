package memory

import (
	"context"
	"fmt"

	"vault/internal/domain"
	"vault/internal/domain/models"
	"vault/internal/domain/repositories"
)

// UserRepository implements repositories.UserRepository
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository over store
func NewUserRepository(store *Store) repositories.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer r.store.lockWrite(ctx)()

	if err := r.checkUnique(user); err != nil {
		return err
	}

	stored := *user
	stored.Settings = cloneMap(user.Settings)
	r.store.data.users[user.ID] = stored
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.data.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	user.Settings = cloneMap(user.Settings)
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.data.users {
		if user.Email == email {
			user.Settings = cloneMap(user.Settings)
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user with email: %w", domain.ErrNotFound)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.data.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.data.users {
		if user.Username == username && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	defer r.store.lockWrite(ctx)()

	if _, ok := r.store.data.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}

	stored := *user
	stored.Settings = cloneMap(user.Settings)
	r.store.data.users[user.ID] = stored
	return nil
}

// checkUnique mirrors the email and username unique constraints; caller holds the lock
func (r *UserRepository) checkUnique(user *models.User) error {
	for id, existing := range r.store.data.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return &domain.ConflictError{Message: "email already registered", ResourceType: "user", Field: "email"}
		}
		if existing.Username == user.Username {
			return &domain.ConflictError{Message: "username already taken", ResourceType: "user", Field: "username"}
		}
	}
	return nil
}
