package services

import (
	"fmt"
	"strings"

	"litshop/internal/domain"
	"litshop/internal/validate"
)

// ValidateOrderRequest checks the shape of a purchase request before any store
// access and returns it with identifiers trimmed.
func ValidateOrderRequest(req domain.OrderRequest) (domain.OrderRequest, error) {
	buyer := strings.TrimSpace(req.BuyerID)
	if buyer == "" {
		return domain.OrderRequest{}, domain.Invalid("buyer_id is required")
	}
	if _, ok := validate.ID(buyer); !ok {
		return domain.OrderRequest{}, domain.Invalid("buyer_id is malformed")
	}
	if len(req.Items) == 0 {
		return domain.OrderRequest{}, domain.Invalid("items must be a non-empty list")
	}

	out := domain.OrderRequest{BuyerID: buyer, Items: make([]domain.ItemRequest, 0, len(req.Items))}
	for i, it := range req.Items {
		id, ok := validate.ID(it.BookID)
		if id == "" {
			return domain.OrderRequest{}, domain.Invalid(fmt.Sprintf("items[%d]: book_id is required", i))
		}
		if !ok {
			return domain.OrderRequest{}, domain.Invalid(fmt.Sprintf("items[%d]: book_id is malformed", i))
		}
		if it.Quantity <= 0 {
			return domain.OrderRequest{}, domain.Invalid(fmt.Sprintf("items[%d]: quantity must be positive", i))
		}
		if !validate.Quantity(it.Quantity) {
			return domain.OrderRequest{}, domain.Invalid(fmt.Sprintf("items[%d]: quantity exceeds %d", i, validate.MaxQuantity))
		}
		out.Items = append(out.Items, domain.ItemRequest{BookID: id, Quantity: it.Quantity})
	}
	return out, nil
}
