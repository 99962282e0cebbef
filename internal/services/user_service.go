package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/taskforge-backend/internal/models"
	"github.com/taskforge/taskforge-backend/internal/repository"
)

const (
	minPasswordLength = 7
	// passwordHashCost matches the fixed work factor the accounts were
	// originally created with.
	passwordHashCost = 8
)

// dummyHash is compared against when the email is unknown so login timing
// does not reveal whether the account exists.
const dummyHash = "$2a$08$XJmqlRW4yTAPAFK2jQFSUOqGdLMvjysyEXFvkuvctE3nh6qlaGSE6"

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// CreateUserInput carries the signup fields. Age is optional and defaults
// to zero.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age"`
}

// UpdateUserInput enumerates the only fields a user may change. Handlers
// decode request bodies into this type with unknown fields disallowed, so the
// allow-list is enforced at the boundary.
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// UserService owns the user lifecycle: field validation, password hashing,
// credential verification, and cascade deletion.
type UserService struct {
	users repository.UserRepository
	tasks repository.TaskRepository
}

func NewUserService(users repository.UserRepository, tasks repository.TaskRepository) *UserService {
	return &UserService{users: users, tasks: tasks}
}

// Create validates the signup fields, hashes the password, and persists the
// new user. A duplicate email surfaces as a ValidationError.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	age := 0
	if in.Age != nil {
		age = *in.Age
	}
	if age < 0 {
		return nil, validationError("age must be a positive number")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Age:      age,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, validationError("email already in use")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.users.FindByID(ctx, oid)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// Update applies an allow-list update to the user and persists the whole
// document. The password is re-validated and re-hashed when it changes.
func (s *UserService) Update(ctx context.Context, user *models.User, in UpdateUserInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return validationError("name is required")
		}
		user.Name = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return err
		}
		user.Email = email
	}
	if in.Age != nil {
		if *in.Age < 0 {
			return validationError("age must be a positive number")
		}
		user.Age = *in.Age
	}
	if in.Password != nil {
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return validationError("email already in use")
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Delete removes the user and all tasks they own. The cascade runs first; if
// it fails the user record is left in place.
func (s *UserService) Delete(ctx context.Context, user *models.User) error {
	if err := s.tasks.DeleteByOwner(ctx, user.ID); err != nil {
		return fmt.Errorf("delete owned tasks: %w", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// VerifyCredentials looks the user up by email and checks the password
// against the stored hash. The two failure modes carry different internal
// messages but callers must surface them identically.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a bcrypt comparison anyway so the miss is not
			// observable through response timing.
			bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrUnableToLogin
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(id))
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) {
		return "", validationError("email is invalid")
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if len(password) < minPasswordLength {
		return "", validationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return "", validationError(`password cannot contain "password"`)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
