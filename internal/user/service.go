package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type RegisterParams struct {
	Username string
	Password string
	FullName string
	Role     Role
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	if params.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	if len(params.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	if params.Role == "" {
		params.Role = RoleUser
	}

	if !params.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", params.Role)
	}

	if _, err := s.repo.GetByUsername(ctx, params.Username); err == nil {
		return nil, fmt.Errorf("username %q already taken", params.Username)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     params.Username,
		PasswordHash: string(hash),
		FullName:     params.FullName,
		Role:         params.Role,
		Active:       true,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Authenticate verifies the credentials against the local user table.
// Deactivated accounts fail the same way as wrong passwords so the
// response does not leak account state.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !u.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Deactivate disables login without removing the row. Sales and
// expenses keep their user references.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}
