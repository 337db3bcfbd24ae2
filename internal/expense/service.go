package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	Insert(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	GetByID(ctx context.Context, id string) (*Expense, error)
	List(ctx context.Context, filter ListFilter) ([]*Expense, error)
	ListUnsynced(ctx context.Context) ([]*Expense, error)
	MarkSynced(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
	TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error)
	TotalsByCategory(ctx context.Context, start, end time.Time) (map[Category]float64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	UserID      string
	Category    Category
	Description string
	Amount      float64
	ImageURI    string
}

type ListFilter struct {
	Category  *Category
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Expense, error) {
	if !params.Category.Valid() {
		return nil, fmt.Errorf("unknown expense category %q", params.Category)
	}

	if params.Amount <= 0 {
		return nil, fmt.Errorf("expense amount must be positive")
	}

	e := &Expense{
		ID:          uuid.NewString(),
		UserID:      params.UserID,
		Category:    params.Category,
		Description: params.Description,
		Amount:      params.Amount,
		ImageURI:    params.ImageURI,
		CreatedAt:   time.Now(),
		SyncStatus:  syncstatus.Pending,
	}

	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

// Update persists an edit. The repository resets sync status to pending so
// the changed content is pushed again.
func (s *Service) Update(ctx context.Context, e *Expense) error {
	if !e.Category.Valid() {
		return fmt.Errorf("unknown expense category %q", e.Category)
	}

	if e.Amount <= 0 {
		return fmt.Errorf("expense amount must be positive")
	}

	return s.repo.Update(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteAll irreversibly clears every expense row.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Expense, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Expense, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error) {
	return s.repo.TotalForRange(ctx, start, end)
}

func (s *Service) TotalsByCategory(ctx context.Context, start, end time.Time) (map[Category]float64, error) {
	return s.repo.TotalsByCategory(ctx, start, end)
}
