package repos

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jmoiron/sqlx"

	"litshop/internal/domain"
)

// OrderRepo is the ledger: committed orders and their line items.
type OrderRepo struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db, dialect: goqu.Dialect(dialect(db))}
}

// AppendOrderAtomic writes the stock decrements, the header and the line items in one
// transaction. A decrement whose live stock no longer covers it aborts the whole
// append with a *domain.BookError of kind ErrStockConflict; nothing is persisted.
func (r *OrderRepo) AppendOrderAtomic(ctx context.Context, h domain.OrderHeader, items []domain.LineItem, decs []domain.Decrement) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range decs {
		ok, err := decrementStock(ctx, tx, d.BookID, d.Qty)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.BookError{Kind: domain.ErrStockConflict, BookID: d.BookID, Requested: d.Qty}
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
	  INSERT INTO orders(id, buyer_id, total_cents, created_at)
	  VALUES(?, ?, ?, ?)
	`), h.ID, h.BuyerID, int64(h.Total), h.CreatedAt); err != nil {
		return err
	}
	for i, it := range items {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
		  INSERT INTO order_items(id, order_id, line_no, book_id, quantity, price_cents)
		  VALUES(?, ?, ?, ?, ?, ?)
		`), it.ID, h.ID, i, it.BookID, it.Quantity, int64(it.PricePerItem)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get returns an order with its items. It returns sql.ErrNoRows when absent.
func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.OrderDetail, error) {
	var o domain.OrderDetail
	if err := r.db.GetContext(ctx, &o.OrderSummary, r.db.Rebind(`
		SELECT o.id, o.buyer_id, b.username, o.total_cents, o.created_at,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
		FROM orders o
		JOIN buyers b ON b.id = o.buyer_id
		WHERE o.id = ?
	`), orderID); err != nil {
		return domain.OrderDetail{}, err
	}

	items := []domain.OrderDetailItem{}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(`
		SELECT COALESCE(oi.book_id,'') AS book_id, COALESCE(bk.title,'') AS title,
		       oi.quantity, oi.price_cents, (oi.quantity * oi.price_cents) AS subtotal_cents
		FROM order_items oi
		LEFT JOIN books bk ON bk.id = oi.book_id
		WHERE oi.order_id = ?
		ORDER BY oi.line_no
	`), orderID); err != nil {
		return domain.OrderDetail{}, err
	}
	o.Items = items
	return o, nil
}

// List returns the newest orders first.
func (r *OrderRepo) List(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	q, args, err := r.dialect.
		From(goqu.T("orders").As("o")).
		Join(goqu.T("buyers").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("o.buyer_id")))).
		LeftJoin(goqu.T("order_items").As("oi"), goqu.On(goqu.I("oi.order_id").Eq(goqu.I("o.id")))).
		Select(
			goqu.I("o.id"),
			goqu.I("o.buyer_id"),
			goqu.I("b.username"),
			goqu.I("o.total_cents"),
			goqu.COUNT(goqu.I("oi.id")).As("item_count"),
			goqu.I("o.created_at"),
		).
		GroupBy(goqu.I("o.id"), goqu.I("o.buyer_id"), goqu.I("b.username"), goqu.I("o.total_cents"), goqu.I("o.created_at")).
		Order(goqu.I("o.created_at").Desc(), goqu.I("o.id").Asc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}
	out := []domain.OrderSummary{}
	err = r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

// SalesSnapshot reads the order totals and every categorised line item from one
// consistent view of the ledger.
func (r *OrderRepo) SalesSnapshot(ctx context.Context) (domain.OrderTotals, []domain.SoldLine, error) {
	var opts *sql.TxOptions
	if !isSQLite(r.db.DriverName()) {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return domain.OrderTotals{}, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := r.totals(ctx, tx)
	if err != nil {
		return domain.OrderTotals{}, nil, err
	}
	lines, err := r.listAllLineItemsWithCategory(ctx, tx)
	if err != nil {
		return domain.OrderTotals{}, nil, err
	}
	return t, lines, tx.Commit()
}

// totals returns the order count and the sum of all order totals.
func (r *OrderRepo) totals(ctx context.Context, q sqlx.QueryerContext) (domain.OrderTotals, error) {
	query, args, err := r.dialect.
		From("orders").
		Select(
			goqu.COUNT(goqu.Star()).As("order_count"),
			goqu.COALESCE(goqu.Cast(goqu.SUM("total_cents"), "BIGINT"), 0).As("total_sum"),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return domain.OrderTotals{}, err
	}
	var t domain.OrderTotals
	err = sqlx.GetContext(ctx, q, &t, query, args...)
	return t, err
}

// listAllLineItemsWithCategory returns every committed line item whose book still
// exists and has a category, joined to that category's name.
func (r *OrderRepo) listAllLineItemsWithCategory(ctx context.Context, q sqlx.QueryerContext) ([]domain.SoldLine, error) {
	query, args, err := r.dialect.
		From(goqu.T("order_items").As("oi")).
		Join(goqu.T("books").As("bk"), goqu.On(goqu.I("bk.id").Eq(goqu.I("oi.book_id")))).
		Join(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("bk.category_id")))).
		Select(
			goqu.I("oi.order_id"),
			goqu.I("oi.book_id"),
			goqu.I("c.name").As("category_name"),
			goqu.I("oi.quantity"),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}
	var out []domain.SoldLine
	err = sqlx.SelectContext(ctx, q, &out, query, args...)
	return out, err
}
