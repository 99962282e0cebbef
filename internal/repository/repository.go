package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskforge/taskforge-backend/internal/models"
)

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert or update violates the
	// unique email index.
	ErrDuplicateEmail = errors.New("email already in use")
)

// UserRepository abstracts persistence of user documents. Token and avatar
// mutations are targeted field updates so they stay atomic at the document
// level; Save replaces the whole document and is last-writer-wins.
type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	PushToken(ctx context.Context, id primitive.ObjectID, token string) error
	PullToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearTokens(ctx context.Context, id primitive.ObjectID) error

	SetAvatar(ctx context.Context, id primitive.ObjectID, avatar []byte) error
	UnsetAvatar(ctx context.Context, id primitive.ObjectID) error
}

// TaskListOptions mirrors the list query parameters: completed filter,
// pagination, and a single sort field.
type TaskListOptions struct {
	Completed *bool
	Limit     int64
	Skip      int64
	SortField string
	SortDesc  bool
}

// TaskRepository abstracts persistence of task documents. All single-task
// lookups are owner-scoped so a user can never reach another user's tasks.
type TaskRepository interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID, opts TaskListOptions) ([]models.Task, error)
	Save(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id, owner primitive.ObjectID) error
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error
}
