package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskforge/taskforge-backend/internal/models"
)

// MemoryUserRepository is an in-memory UserRepository with the same
// uniqueness semantics as the Mongo implementation. Used by tests and local
// development without a database.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *MemoryUserRepository) Insert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Tokens == nil {
		user.Tokens = []string{}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) PushToken(_ context.Context, id primitive.ObjectID, token string) error {
	return r.update(id, func(u *models.User) {
		u.Tokens = append(u.Tokens, token)
	})
}

func (r *MemoryUserRepository) PullToken(_ context.Context, id primitive.ObjectID, token string) error {
	return r.update(id, func(u *models.User) {
		kept := u.Tokens[:0]
		for _, t := range u.Tokens {
			if t != token {
				kept = append(kept, t)
			}
		}
		u.Tokens = kept
	})
}

func (r *MemoryUserRepository) ClearTokens(_ context.Context, id primitive.ObjectID) error {
	return r.update(id, func(u *models.User) {
		u.Tokens = []string{}
	})
}

func (r *MemoryUserRepository) SetAvatar(_ context.Context, id primitive.ObjectID, avatar []byte) error {
	return r.update(id, func(u *models.User) {
		u.Avatar = avatar
	})
}

func (r *MemoryUserRepository) UnsetAvatar(_ context.Context, id primitive.ObjectID) error {
	return r.update(id, func(u *models.User) {
		u.Avatar = nil
	})
}

func (r *MemoryUserRepository) update(id primitive.ObjectID, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Tokens = append([]string(nil), u.Tokens...)
	c.Avatar = append([]byte(nil), u.Avatar...)
	return &c
}
