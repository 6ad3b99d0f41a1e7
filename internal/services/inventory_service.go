package services

import (
	"context"
	"database/sql"
	"errors"

	"litshop/internal/domain"
)

// LowStockThreshold is the stock level below which a book reports LOW_STOCK.
const LowStockThreshold = 5

// StockReader returns the live stock of a book, or sql.ErrNoRows.
type StockReader interface {
	Stock(ctx context.Context, id string) (int, error)
}

type InventoryService struct {
	Books StockReader
}

func NewInventoryService(books StockReader) *InventoryService {
	return &InventoryService{Books: books}
}

// CheckAvailability converts stock to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
// It is advisory only: placing an order re-checks stock atomically.
func (s *InventoryService) CheckAvailability(ctx context.Context, bookID string) (domain.Availability, error) {
	qty, err := s.Books.Stock(ctx, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Availability{}, &domain.BookError{Kind: domain.ErrBookNotFound, BookID: bookID}
	}
	if err != nil {
		return domain.Availability{}, storeErr(err)
	}

	status := "OUT_OF_STOCK"
	switch {
	case qty >= LowStockThreshold:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{BookID: bookID, Status: status, Stock: qty}, nil
}
