package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale
type Repository interface {
	Insert(ctx context.Context, s *Sale) error
	Update(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Sale, error)
	List(ctx context.Context, filter ListFilter) ([]*Sale, error)
	ListUnsynced(ctx context.Context) ([]*Sale, error)
	MarkSynced(ctx context.Context, ids ...string) error
	TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type LineParams struct {
	ItemID       string
	ItemName     string
	Quantity     float64
	PricePerUnit float64
}

type CreateParams struct {
	UserID        string
	Lines         []LineParams
	PaymentMethod string
	CustomerName  string
	CustomerPhone string
}

type ListFilter struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
}

// Create records a completed sale. Line and grand totals are computed here;
// callers never supply amounts directly.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Sale, error) {
	items, err := buildLines(params.Lines)
	if err != nil {
		return nil, err
	}

	method := params.PaymentMethod
	if method == "" {
		method = "cash"
	}

	sl := &Sale{
		ID:            uuid.NewString(),
		UserID:        params.UserID,
		TotalAmount:   GrandTotal(items),
		Items:         items,
		PaymentMethod: method,
		CustomerName:  params.CustomerName,
		CustomerPhone: params.CustomerPhone,
		CreatedAt:     time.Now(),
		SyncStatus:    syncstatus.Pending,
	}

	if err := s.repo.Insert(ctx, sl); err != nil {
		return nil, err
	}

	return sl, nil
}

// Edit replaces the line items of an existing sale and recomputes totals.
// The repository resets the sync status to pending so the edited content is
// pushed again on the next cycle.
func (s *Service) Edit(ctx context.Context, id string, lines []LineParams) (*Sale, error) {
	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := buildLines(lines)
	if err != nil {
		return nil, err
	}

	sl.Items = items
	sl.TotalAmount = GrandTotal(items)

	if err := s.repo.Update(ctx, sl); err != nil {
		return nil, err
	}

	return sl, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Sale, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error) {
	return s.repo.TotalForRange(ctx, start, end)
}

func buildLines(lines []LineParams) ([]LineItem, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("a sale needs at least one line item")
	}

	items := make([]LineItem, len(lines))

	for i, l := range lines {
		if l.Quantity < 0 {
			return nil, fmt.Errorf("line %d: negative quantity", i)
		}

		if l.PricePerUnit < 0 {
			return nil, fmt.Errorf("line %d: negative price", i)
		}

		items[i] = LineItem{
			ItemID:       l.ItemID,
			ItemName:     l.ItemName,
			Quantity:     l.Quantity,
			PricePerUnit: l.PricePerUnit,
			TotalPrice:   LineTotal(l.Quantity, l.PricePerUnit),
		}
	}

	return items, nil
}
