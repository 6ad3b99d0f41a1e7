package events

import (
	"context"

	"litshop/internal/domain"
)

// OrderPlaced is emitted once an order has been durably committed.
type OrderPlaced struct {
	OrderID     string            `json:"order_id"`
	BuyerID     string            `json:"buyer_id"`
	TotalAmount domain.Money      `json:"total_amount"`
	CreatedAt   string            `json:"created_at"`
	LineItems   []domain.LineItem `json:"line_items"`
}

// FromReceipt builds the event for a committed order.
func FromReceipt(r domain.Receipt) OrderPlaced {
	return OrderPlaced{
		OrderID:     r.OrderID,
		BuyerID:     r.BuyerID,
		TotalAmount: r.TotalAmount,
		CreatedAt:   r.CreatedAt,
		LineItems:   r.LineItems,
	}
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, e OrderPlaced) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
func (NopPublisher) Close() error                                         { return nil }
