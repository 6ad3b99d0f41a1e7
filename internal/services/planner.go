package services

import (
	"context"
	"database/sql"
	"errors"

	"litshop/internal/domain"
)

// Planner resolves requested items against the catalog and prices them.
// It only observes stock; the committer re-checks it against the live row.
type Planner struct {
	Books Catalog
}

func NewPlanner(books Catalog) *Planner { return &Planner{Books: books} }

// Plan validates availability for every item in order. The first failing item
// aborts planning. A book listed more than once is checked against its
// cumulative requested quantity.
func (p *Planner) Plan(ctx context.Context, items []domain.ItemRequest) (domain.Plan, error) {
	plan := domain.Plan{Items: make([]domain.PlannedItem, 0, len(items))}
	seen := make(map[string]domain.Book, len(items))
	claimed := make(map[string]int, len(items))

	for _, it := range items {
		b, ok := seen[it.BookID]
		if !ok {
			var err error
			b, err = p.Books.GetBook(ctx, it.BookID)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.Plan{}, &domain.BookError{Kind: domain.ErrBookNotFound, BookID: it.BookID}
			}
			if err != nil {
				return domain.Plan{}, storeErr(err)
			}
			seen[it.BookID] = b
		}

		need := claimed[b.ID] + it.Quantity
		if need > b.Stock {
			return domain.Plan{}, &domain.BookError{
				Kind:      domain.ErrInsufficientStock,
				BookID:    b.ID,
				Title:     b.Title,
				Stock:     b.Stock,
				Requested: need,
			}
		}
		claimed[b.ID] = need

		plan.Items = append(plan.Items, domain.PlannedItem{
			BookID:     b.ID,
			Title:      b.Title,
			UnitPrice:  b.Price,
			Quantity:   it.Quantity,
			StockAfter: b.Stock - need,
		})
		plan.Total += b.Price.Times(it.Quantity)
	}
	return plan, nil
}
