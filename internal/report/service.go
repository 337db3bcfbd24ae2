// Package report computes financial summaries from the local store. Reports
// never touch the remote side, so they work fully offline.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/expense"
)

type SaleSource interface {
	TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error)
}

type ExpenseSource interface {
	TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error)
	TotalsByCategory(ctx context.Context, start, end time.Time) (map[expense.Category]float64, error)
}

// Summary is one range's financials. ProfitMargin is a percentage of sales
// and zero when there were no sales.
type Summary struct {
	Start              time.Time                    `json:"start"`
	End                time.Time                    `json:"end"`
	TotalSales         float64                      `json:"totalSales"`
	SaleCount          int64                        `json:"saleCount"`
	TotalExpenses      float64                      `json:"totalExpenses"`
	ExpenseCount       int64                        `json:"expenseCount"`
	Profit             float64                      `json:"profit"`
	ProfitMargin       float64                      `json:"profitMargin"`
	ExpensesByCategory map[expense.Category]float64 `json:"expensesByCategory"`
}

type Service struct {
	sales    SaleSource
	expenses ExpenseSource
	now      func() time.Time
}

func NewService(sales SaleSource, expenses ExpenseSource) *Service {
	return &Service{sales: sales, expenses: expenses, now: time.Now}
}

func (s *Service) Range(ctx context.Context, start, end time.Time) (*Summary, error) {
	totalSales, saleCount, err := s.sales.TotalForRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summing sales: %w", err)
	}

	totalExpenses, expenseCount, err := s.expenses.TotalForRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summing expenses: %w", err)
	}

	byCategory, err := s.expenses.TotalsByCategory(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("breaking down expenses: %w", err)
	}

	profit := totalSales - totalExpenses

	var margin float64
	if totalSales > 0 {
		margin = profit / totalSales * 100
	}

	return &Summary{
		Start:              start,
		End:                end,
		TotalSales:         totalSales,
		SaleCount:          saleCount,
		TotalExpenses:      totalExpenses,
		ExpenseCount:       expenseCount,
		Profit:             profit,
		ProfitMargin:       margin,
		ExpensesByCategory: byCategory,
	}, nil
}

func (s *Service) Today(ctx context.Context) (*Summary, error) {
	start := startOfDay(s.now())

	return s.Range(ctx, start, start.AddDate(0, 0, 1).Add(-time.Millisecond))
}

// ThisWeek runs Monday through now.
func (s *Service) ThisWeek(ctx context.Context) (*Summary, error) {
	now := s.now()

	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	start := startOfDay(now).AddDate(0, 0, -(weekday - 1))

	return s.Range(ctx, start, now)
}

func (s *Service) ThisMonth(ctx context.Context) (*Summary, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	return s.Range(ctx, start, now)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
