package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskforge/taskforge-backend/internal/models"
)

// MemoryTaskRepository is the in-memory counterpart of the Mongo task store.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[primitive.ObjectID]*models.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[primitive.ObjectID]*models.Task)}
}

func (r *MemoryTaskRepository) Insert(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = now
	task.UpdatedAt = now
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *MemoryTaskRepository) FindByID(_ context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *MemoryTaskRepository) FindByOwner(_ context.Context, owner primitive.ObjectID, opts TaskListOptions) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Task{}
	for _, t := range r.tasks {
		if t.Owner != owner {
			continue
		}
		if opts.Completed != nil && t.Completed != *opts.Completed {
			continue
		}
		out = append(out, *t)
	}

	sortTasks(out, opts)

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(out)) {
			return []models.Task{}, nil
		}
		out = out[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(out)) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *MemoryTaskRepository) Save(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[task.ID]
	if !ok || existing.Owner != task.Owner {
		return ErrNotFound
	}
	task.UpdatedAt = time.Now().UTC()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id, owner primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryTaskRepository) DeleteByOwner(_ context.Context, owner primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tasks {
		if t.Owner == owner {
			delete(r.tasks, id)
		}
	}
	return nil
}

func sortTasks(tasks []models.Task, opts TaskListOptions) {
	if opts.SortField == "" {
		// Stable default so pagination is deterministic
		sort.Slice(tasks, func(i, j int) bool {
			return tasks[i].ID.Hex() < tasks[j].ID.Hex()
		})
		return
	}

	less := func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch opts.SortField {
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "completed":
			return !a.Completed && b.Completed
		case "description":
			return a.Description < b.Description
		}
		return false
	}
	if opts.SortDesc {
		sort.Slice(tasks, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.Slice(tasks, less)
}
