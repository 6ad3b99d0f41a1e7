package services

import (
	"context"

	"litshop/internal/domain"
)

// Catalog is the read-only book lookup the planner depends on.
// GetBook returns sql.ErrNoRows when the book does not exist.
type Catalog interface {
	GetBook(ctx context.Context, id string) (domain.Book, error)
}

type Buyers interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// OrderWriter persists a planned order as one atomic unit.
type OrderWriter interface {
	AppendOrderAtomic(ctx context.Context, h domain.OrderHeader, items []domain.LineItem, decs []domain.Decrement) error
}

type OrderReader interface {
	Get(ctx context.Context, orderID string) (domain.OrderDetail, error)
	List(ctx context.Context, limit int) ([]domain.OrderSummary, error)
}

// Ledger is the full order store.
type Ledger interface {
	OrderWriter
	OrderReader
}

// SalesLedger is what statistics are computed from.
type SalesLedger interface {
	SalesSnapshot(ctx context.Context) (domain.OrderTotals, []domain.SoldLine, error)
}
