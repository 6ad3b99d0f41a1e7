package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"litshop/internal/domain"
)

// Committer turns a plan into a durable order.
type Committer struct {
	Ledger OrderWriter

	now   func() time.Time
	newID func() string
}

func NewCommitter(ledger OrderWriter) *Committer {
	return &Committer{Ledger: ledger, now: time.Now, newID: uuid.NewString}
}

// Decrements folds the plan into one decrement per distinct book, sorted by
// book id so concurrent commits lock rows in the same order.
func Decrements(plan domain.Plan) []domain.Decrement {
	sum := make(map[string]int, len(plan.Items))
	for _, it := range plan.Items {
		sum[it.BookID] += it.Quantity
	}
	out := make([]domain.Decrement, 0, len(sum))
	for id, qty := range sum {
		out = append(out, domain.Decrement{BookID: id, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookID < out[j].BookID })
	return out
}

// Commit persists header, line items and stock decrements atomically. Line
// items carry the planned price; nothing is re-read from the catalog.
func (c *Committer) Commit(ctx context.Context, buyerID string, plan domain.Plan) (domain.Receipt, error) {
	if len(plan.Items) == 0 {
		return domain.Receipt{}, domain.Invalid("nothing to commit")
	}

	h := domain.OrderHeader{
		ID:        c.newID(),
		BuyerID:   buyerID,
		CreatedAt: c.now().UTC().Format(domain.TimeLayout),
	}
	items := make([]domain.LineItem, 0, len(plan.Items))
	for _, it := range plan.Items {
		items = append(items, domain.LineItem{
			ID:           c.newID(),
			OrderID:      h.ID,
			BookID:       it.BookID,
			Quantity:     it.Quantity,
			PricePerItem: it.UnitPrice,
		})
		h.Total += it.UnitPrice.Times(it.Quantity)
	}
	if h.Total != plan.Total {
		return domain.Receipt{}, fmt.Errorf("plan total %s does not match its items %s", plan.Total, h.Total)
	}

	if err := c.Ledger.AppendOrderAtomic(ctx, h, items, Decrements(plan)); err != nil {
		var be *domain.BookError
		if errors.As(err, &be) {
			return domain.Receipt{}, err
		}
		return domain.Receipt{}, storeErr(err)
	}

	return domain.Receipt{
		OrderID:     h.ID,
		BuyerID:     h.BuyerID,
		TotalAmount: h.Total,
		CreatedAt:   h.CreatedAt,
		LineItems:   items,
	}, nil
}
