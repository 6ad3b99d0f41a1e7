package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// BuyerRepo is the order path's read-only view of registered buyers.
type BuyerRepo struct{ db *sqlx.DB }

func NewBuyerRepo(db *sqlx.DB) *BuyerRepo { return &BuyerRepo{db: db} }

// Exists reports whether a buyer id is known.
func (r *BuyerRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM buyers WHERE id=?`), id); err != nil {
		return false, err
	}
	return n > 0, nil
}
