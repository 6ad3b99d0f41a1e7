package repos

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"litshop/internal/domain"
)

// BookRepo is the read side of the catalog used by the order path.
type BookRepo struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

func NewBookRepo(db *sqlx.DB) *BookRepo {
	return &BookRepo{db: db, dialect: goqu.Dialect(dialect(db))}
}

// GetBook returns the current price, stock and category of a book.
// If no row exists, it returns sql.ErrNoRows from sqlx.Get.
func (r *BookRepo) GetBook(ctx context.Context, id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.GetContext(ctx, &b, r.db.Rebind(`
		SELECT id, title, author, price_cents, stock, COALESCE(category_id,'') AS category_id
		FROM books
		WHERE id = ?
	`), id)
	return b, err
}

// Search lists books by title, optionally narrowed to a category and a
// case-insensitive title/author keyword.
func (r *BookRepo) Search(ctx context.Context, f domain.BookFilter) ([]domain.BookListing, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	ds := r.dialect.
		From(goqu.T("books").As("bk")).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("bk.category_id")))).
		Select(
			goqu.I("bk.id"),
			goqu.I("bk.title"),
			goqu.I("bk.author"),
			goqu.I("bk.price_cents"),
			goqu.I("bk.stock"),
			goqu.COALESCE(goqu.I("bk.category_id"), "").As("category_id"),
			goqu.COALESCE(goqu.I("c.name"), "").As("category_name"),
		)
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		like := "%" + q + "%"
		ds = ds.Where(goqu.Or(
			goqu.Func("LOWER", goqu.I("bk.title")).Like(like),
			goqu.Func("LOWER", goqu.I("bk.author")).Like(like),
		))
	}
	if f.CategoryID != "" {
		ds = ds.Where(goqu.I("bk.category_id").Eq(f.CategoryID))
	}
	if f.InStockOnly {
		ds = ds.Where(goqu.I("bk.stock").Gt(0))
	}
	query, args, err := ds.
		Order(goqu.I("bk.title").Asc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}
	out := []domain.BookListing{}
	err = r.db.SelectContext(ctx, &out, query, args...)
	return out, err
}

// Stock returns the live stock of a book.
func (r *BookRepo) Stock(ctx context.Context, id string) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty, r.db.Rebind(`SELECT stock FROM books WHERE id = ?`), id)
	return qty, err
}

// decrementStock subtracts qty only if the live row still holds at least qty.
// It reports false when the condition did not hold.
func decrementStock(ctx context.Context, tx *sqlx.Tx, bookID string, qty int) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE books
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`), qty, bookID, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
