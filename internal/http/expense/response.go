package expense

import (
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/expense"
)

type response struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	ImageURI    string    `json:"imageUri,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	SyncStatus  string    `json:"syncStatus"`
}

func toResponse(e *expense.Expense) response {
	return response{
		ID:          e.ID,
		UserID:      e.UserID,
		Category:    string(e.Category),
		Description: e.Description,
		Amount:      e.Amount,
		ImageURI:    e.ImageURI,
		CreatedAt:   e.CreatedAt,
		SyncStatus:  string(e.SyncStatus),
	}
}

func toResponseList(expenses []*expense.Expense) []response {
	out := make([]response, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toResponse(e))
	}

	return out
}
