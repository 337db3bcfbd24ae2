package sale

import (
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/sale"
)

type lineResponse struct {
	ItemID       string  `json:"itemId,omitempty"`
	ItemName     string  `json:"itemName"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	TotalPrice   float64 `json:"totalPrice"`
}

type response struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	TotalAmount   float64        `json:"totalAmount"`
	Items         []lineResponse `json:"items"`
	PaymentMethod string         `json:"paymentMethod"`
	CustomerName  string         `json:"customerName,omitempty"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	SyncStatus    string         `json:"syncStatus"`
}

func toResponse(sl *sale.Sale) response {
	items := make([]lineResponse, 0, len(sl.Items))
	for _, li := range sl.Items {
		items = append(items, lineResponse{
			ItemID:       li.ItemID,
			ItemName:     li.ItemName,
			Quantity:     li.Quantity,
			PricePerUnit: li.PricePerUnit,
			TotalPrice:   li.TotalPrice,
		})
	}

	return response{
		ID:            sl.ID,
		UserID:        sl.UserID,
		TotalAmount:   sl.TotalAmount,
		Items:         items,
		PaymentMethod: sl.PaymentMethod,
		CustomerName:  sl.CustomerName,
		CustomerPhone: sl.CustomerPhone,
		CreatedAt:     sl.CreatedAt,
		SyncStatus:    string(sl.SyncStatus),
	}
}

func toResponseList(sales []*sale.Sale) []response {
	out := make([]response, 0, len(sales))
	for _, sl := range sales {
		out = append(out, toResponse(sl))
	}

	return out
}
