package item

import (
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/item"
)

type response struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	ReferencePrice *float64  `json:"referencePrice,omitempty"`
	Unit           string    `json:"unit"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      string    `json:"createdBy,omitempty"`
}

func toResponse(it *item.Item) response {
	return response{
		ID:             it.ID,
		Name:           it.Name,
		Category:       string(it.Category),
		ReferencePrice: it.ReferencePrice,
		Unit:           it.Unit,
		Active:         it.Active,
		CreatedAt:      it.CreatedAt,
		CreatedBy:      it.CreatedBy,
	}
}

func toResponseList(items []*item.Item) []response {
	out := make([]response, 0, len(items))
	for _, it := range items {
		out = append(out, toResponse(it))
	}

	return out
}
