package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"litshop/internal/domain"
)

type StatisticsService struct {
	Sales SalesLedger
}

func NewStatisticsService(sales SalesLedger) *StatisticsService {
	return &StatisticsService{Sales: sales}
}

// Get computes sales statistics from the full order history.
func (s *StatisticsService) Get(ctx context.Context) (domain.Statistics, error) {
	totals, lines, err := s.Sales.SalesSnapshot(ctx)
	if err != nil {
		return domain.Statistics{}, storeErr(err)
	}
	return Aggregate(totals, lines), nil
}

// Aggregate groups sold lines by category name and picks the extremes.
// On equal totals the name that sorts first wins, for both extremes.
func Aggregate(totals domain.OrderTotals, lines []domain.SoldLine) domain.Statistics {
	st := domain.Statistics{
		TotalOrders: totals.Count,
		Categories:  []domain.CategorySale{},
	}
	if totals.Count > 0 {
		avg := totals.Sum.Decimal().Div(decimal.NewFromInt(int64(totals.Count)))
		st.AverageOrderAmount = avg.InexactFloat64()
	}

	sold := make(map[string]int)
	for _, l := range lines {
		if l.Category == "" {
			continue
		}
		sold[l.Category] += l.Quantity
	}
	names := make([]string, 0, len(sold))
	for name := range sold {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cs := domain.CategorySale{Name: name, TotalSold: sold[name]}
		st.Categories = append(st.Categories, cs)
		if st.MostSoldCategory == nil || cs.TotalSold > st.MostSoldCategory.TotalSold {
			most := cs
			st.MostSoldCategory = &most
		}
		if st.LeastSoldCategory == nil || cs.TotalSold < st.LeastSoldCategory.TotalSold {
			least := cs
			st.LeastSoldCategory = &least
		}
	}
	return st
}
