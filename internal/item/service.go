package item

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=item
type Repository interface {
	Upsert(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Item, error)
	ListActive(ctx context.Context) ([]*Item, error)
	Search(ctx context.Context, query string) ([]*Item, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name           string
	Category       Category
	ReferencePrice *float64
	Unit           string
	CreatedBy      string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Item, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("item name is required")
	}

	if params.Category != CategoryProduct && params.Category != CategoryService {
		return nil, fmt.Errorf("unknown item category %q", params.Category)
	}

	unit := params.Unit
	if unit == "" {
		unit = "pc"
	}

	it := &Item{
		ID:             uuid.NewString(),
		Name:           params.Name,
		Category:       params.Category,
		ReferencePrice: params.ReferencePrice,
		Unit:           unit,
		Active:         true,
		CreatedAt:      time.Now(),
		CreatedBy:      params.CreatedBy,
	}

	if err := s.repo.Upsert(ctx, it); err != nil {
		return nil, err
	}

	return it, nil
}

func (s *Service) Update(ctx context.Context, it *Item) error {
	return s.repo.Update(ctx, it)
}

// Delete is a soft delete: the row stays, the item just stops appearing in
// selection reads.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]*Item, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Item, error) {
	return s.repo.Search(ctx, query)
}

// defaultCatalog seeds a fresh install with a starter catalog so the first
// sale does not require setting up items one by one.
var defaultCatalog = []CreateParams{
	{Name: "Rice", Category: CategoryProduct, Unit: "kg"},
	{Name: "Wheat Flour", Category: CategoryProduct, Unit: "kg"},
	{Name: "Sugar", Category: CategoryProduct, Unit: "kg"},
	{Name: "Cooking Oil", Category: CategoryProduct, Unit: "ltr"},
	{Name: "Milk", Category: CategoryProduct, Unit: "ltr"},
	{Name: "Home Delivery", Category: CategoryService, Unit: "pc"},
}

// SeedDefaults inserts the default catalog when the store has no active
// items yet. It is a no-op on an already-populated store.
func (s *Service) SeedDefaults(ctx context.Context, createdBy string) error {
	existing, err := s.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("checking existing catalog: %w", err)
	}

	if len(existing) > 0 {
		return nil
	}

	for _, params := range defaultCatalog {
		params.CreatedBy = createdBy
		if _, err := s.Create(ctx, params); err != nil {
			return fmt.Errorf("seeding %q: %w", params.Name, err)
		}
	}

	return nil
}
