package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskforge/taskforge-backend/internal/models"
	"github.com/taskforge/taskforge-backend/internal/repository"
)

// CreateTaskInput carries the task creation fields.
type CreateTaskInput struct {
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
}

// UpdateTaskInput enumerates the only task fields a user may change.
type UpdateTaskInput struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TaskService owns the task lifecycle. Every operation is scoped to the
// owning user.
type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) Create(ctx context.Context, owner primitive.ObjectID, in CreateTaskInput) (*models.Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, validationError("description is required")
	}

	task := &models.Task{
		Description: description,
		Owner:       owner,
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (s *TaskService) FindByID(ctx context.Context, owner primitive.ObjectID, id string) (*models.Task, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.tasks.FindByID(ctx, oid, owner)
}

// List returns the owner's tasks. completed filters by state, limit/skip
// paginate, and sortBy takes "field" or "field:desc".
func (s *TaskService) List(ctx context.Context, owner primitive.ObjectID, completed, limit, skip, sortBy string) ([]models.Task, error) {
	opts, err := parseListOptions(completed, limit, skip, sortBy)
	if err != nil {
		return nil, err
	}
	return s.tasks.FindByOwner(ctx, owner, opts)
}

func (s *TaskService) Update(ctx context.Context, owner primitive.ObjectID, id string, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.FindByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, validationError("description is required")
		}
		task.Description = description
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, owner primitive.ObjectID, id string) (*models.Task, error) {
	task, err := s.FindByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, task.ID, owner); err != nil {
		return nil, err
	}
	return task, nil
}

func parseListOptions(completed, limit, skip, sortBy string) (repository.TaskListOptions, error) {
	var opts repository.TaskListOptions

	if completed != "" {
		v, err := strconv.ParseBool(completed)
		if err != nil {
			return opts, validationError("completed must be true or false")
		}
		opts.Completed = &v
	}
	if limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n < 0 {
			return opts, validationError("limit must be a positive number")
		}
		opts.Limit = n
	}
	if skip != "" {
		n, err := strconv.ParseInt(skip, 10, 64)
		if err != nil || n < 0 {
			return opts, validationError("skip must be a positive number")
		}
		opts.Skip = n
	}
	if sortBy != "" {
		field, dir, hasDir := strings.Cut(sortBy, ":")
		switch field {
		case "created_at", "updated_at", "completed", "description":
		default:
			return opts, validationError("invalid sort field")
		}
		opts.SortField = field
		if hasDir {
			switch dir {
			case "asc":
			case "desc":
				opts.SortDesc = true
			default:
				return opts, validationError("sort direction must be asc or desc")
			}
		}
	}
	return opts, nil
}
