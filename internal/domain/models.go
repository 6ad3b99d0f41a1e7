package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (cents). Conversions to and from major
// units go through decimal.Decimal so no value passes through a float.
type Money int64

// Times returns m multiplied by a quantity.
func (m Money) Times(qty int) Money { return m * Money(qty) }

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal { return decimal.New(int64(m), -2) }

func (m Money) String() string { return m.Decimal().StringFixed(2) }

// MarshalJSON renders the amount as a number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = FromDecimal(d)
	return nil
}

// FromDecimal converts a major-unit amount to Money, rounding half away from
// zero to the nearest cent.
func FromDecimal(d decimal.Decimal) Money { return Money(d.Shift(2).Round(0).IntPart()) }

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

type Book struct {
	ID         string `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	Author     string `db:"author" json:"author"`
	Price      Money  `db:"price_cents" json:"price"`
	Stock      int    `db:"stock" json:"stock"`
	CategoryID string `db:"category_id" json:"category_id,omitempty"` // empty when unassigned
}

// BookListing is a catalog row with its category name resolved.
type BookListing struct {
	Book
	CategoryName string `db:"category_name" json:"category_name,omitempty"`
}

// Availability is a coarse stock signal for one book.
type Availability struct {
	BookID string `json:"book_id"`
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Stock  int    `json:"stock"`
}

// BookFilter narrows a catalog listing. Zero values match everything.
type BookFilter struct {
	Query       string
	CategoryID  string
	InStockOnly bool
	Limit       int
}

// ItemRequest is one requested (book, quantity) pair.
type ItemRequest struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is what callers hand to the order path.
type OrderRequest struct {
	BuyerID string        `json:"buyer_id"`
	Items   []ItemRequest `json:"items"`
}

// PlannedItem is a priced, stock-checked line of a Plan.
type PlannedItem struct {
	BookID     string
	Title      string
	UnitPrice  Money
	Quantity   int
	StockAfter int
}

// Plan is the validated, priced order computed before commit.
type Plan struct {
	Items []PlannedItem
	Total Money
}

// Decrement is a conditional stock change for one book.
type Decrement struct {
	BookID string
	Qty    int
}

// OrderHeader is the row written once per committed order.
type OrderHeader struct {
	ID        string `db:"id"`
	BuyerID   string `db:"buyer_id"`
	Total     Money  `db:"total_cents"`
	CreatedAt string `db:"created_at"`
}

// LineItem is an immutable sold line; BookID is empty once the book was deleted.
type LineItem struct {
	ID           string `db:"id" json:"-"`
	OrderID      string `db:"order_id" json:"-"`
	BookID       string `db:"book_id" json:"book_id"`
	Quantity     int    `db:"quantity" json:"quantity"`
	PricePerItem Money  `db:"price_cents" json:"price_per_item"`
}

// Receipt is the result of a successful PlaceOrder.
type Receipt struct {
	OrderID     string     `json:"order_id"`
	BuyerID     string     `json:"buyer_id"`
	TotalAmount Money      `json:"total_amount"`
	CreatedAt   string     `json:"created_at"`
	LineItems   []LineItem `json:"line_items"`
}

// OrderSummary is a list row for order history.
type OrderSummary struct {
	ID            string `db:"id" json:"id"`
	BuyerID       string `db:"buyer_id" json:"buyer_id"`
	BuyerUsername string `db:"username" json:"buyer_username"`
	Total         Money  `db:"total_cents" json:"total_amount"`
	ItemCount     int    `db:"item_count" json:"item_count"`
	CreatedAt     string `db:"created_at" json:"created_at"`
}

type OrderDetailItem struct {
	BookID       string `db:"book_id" json:"book_id,omitempty"`
	Title        string `db:"title" json:"title,omitempty"`
	Quantity     int    `db:"quantity" json:"quantity"`
	PricePerItem Money  `db:"price_cents" json:"price_per_item"`
	Subtotal     Money  `db:"subtotal_cents" json:"subtotal"`
}

type OrderDetail struct {
	OrderSummary
	Items []OrderDetailItem `json:"items"`
}

// SoldLine is a committed line item resolved to its book's category.
type SoldLine struct {
	OrderID  string `db:"order_id"`
	BookID   string `db:"book_id"`
	Category string `db:"category_name"`
	Quantity int    `db:"quantity"`
}

// TimeLayout is fixed-width so lexical order matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"
