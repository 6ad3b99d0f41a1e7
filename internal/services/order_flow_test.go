package services_test

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"litshop/internal/domain"
	"litshop/internal/events"
	applog "litshop/internal/log"
	"litshop/internal/repos"
	"litshop/internal/services"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// memdb opens an in-memory store with two categories, three books and two buyers.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fixture := []string{
		`INSERT INTO categories(id,name) VALUES ('fiction','Fiction'),('poetry','Poetry')`,
		`INSERT INTO books(id,title,author,price_cents,stock,category_id) VALUES
		  ('book-a','Book A','Author A',1000,5,'fiction'),
		  ('book-b','Book B','Author B',2000,2,'fiction'),
		  ('book-p','Book P','Poet',1250,10,'poetry')`,
		`INSERT INTO buyers(id,username,password_hash) VALUES
		  ('buyer-1','reader','x'),
		  ('buyer-2','critic','x')`,
	}
	for _, stmt := range fixture {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e events.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newOrderService(db *sqlx.DB, pub events.Publisher) *services.OrderService {
	return services.NewOrderService(repos.NewBookRepo(db), repos.NewBuyerRepo(db), repos.NewOrderRepo(db), pub)
}

func stockOf(t *testing.T, db *sqlx.DB, id string) int {
	t.Helper()
	n, err := repos.NewBookRepo(db).Stock(context.Background(), id)
	require.NoError(t, err)
	return n
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func order(buyer string, items ...domain.ItemRequest) domain.OrderRequest {
	return domain.OrderRequest{BuyerID: buyer, Items: items}
}

func item(book string, qty int) domain.ItemRequest {
	return domain.ItemRequest{BookID: book, Quantity: qty}
}

func TestOrderFlow_PlaceThenSoldOut(t *testing.T) {
	db := memdb(t)
	pub := &recordingPublisher{}
	svc := newOrderService(db, pub)
	ctx := context.Background()

	rc, err := svc.Place(ctx, order("buyer-1", item("book-a", 3), item("book-b", 2)))
	require.NoError(t, err)
	assert.NotEmpty(t, rc.OrderID)
	assert.Equal(t, "buyer-1", rc.BuyerID)
	assert.Equal(t, domain.Money(7000), rc.TotalAmount)
	require.Len(t, rc.LineItems, 2)
	assert.Equal(t, "book-a", rc.LineItems[0].BookID)
	assert.Equal(t, domain.Money(1000), rc.LineItems[0].PricePerItem)

	assert.Equal(t, 2, stockOf(t, db, "book-a"))
	assert.Equal(t, 0, stockOf(t, db, "book-b"))

	_, err = svc.Place(ctx, order("buyer-2", item("book-b", 1)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var be *domain.BookError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "book-b", be.BookID)
	assert.Equal(t, 0, be.Stock)

	assert.Equal(t, 1, countRows(t, db, "orders"))
	require.Len(t, pub.events, 1)
	assert.Equal(t, rc.OrderID, pub.events[0].OrderID)
	assert.Equal(t, rc.TotalAmount, pub.events[0].TotalAmount)
}

func TestOrderFlow_MoneyConservation(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db, nil)
	ctx := context.Background()

	reqs := []domain.OrderRequest{
		order("buyer-1", item("book-a", 1), item("book-p", 3)),
		order("buyer-2", item("book-p", 2), item("book-b", 1), item("book-a", 2)),
		order("buyer-1", item("book-p", 1)),
	}
	for _, req := range reqs {
		_, err := svc.Place(ctx, req)
		require.NoError(t, err)
	}

	type row struct {
		ID    string       `db:"id"`
		Total domain.Money `db:"total_cents"`
		Sum   domain.Money `db:"line_sum"`
	}
	var rows []row
	require.NoError(t, db.Select(&rows, `
		SELECT o.id, o.total_cents, SUM(oi.quantity * oi.price_cents) AS line_sum
		FROM orders o JOIN order_items oi ON oi.order_id = o.id
		GROUP BY o.id, o.total_cents`))
	require.Len(t, rows, len(reqs))
	for _, r := range rows {
		assert.Equal(t, r.Total, r.Sum, "order %s", r.ID)
	}
}

func TestOrderFlow_DuplicateBookIsSummed(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db, nil)
	ctx := context.Background()

	// each line fits the stock of 5 on its own, their sum does not
	_, err := svc.Place(ctx, order("buyer-1", item("book-a", 2), item("book-a", 2), item("book-a", 2)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, stockOf(t, db, "book-a"))

	rc, err := svc.Place(ctx, order("buyer-1", item("book-a", 2), item("book-a", 3)))
	require.NoError(t, err)
	assert.Len(t, rc.LineItems, 2)
	assert.Equal(t, domain.Money(5000), rc.TotalAmount)
	assert.Equal(t, 0, stockOf(t, db, "book-a"))
}

func TestOrderFlow_Rejections(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.OrderRequest
		want error
	}{
		{"no buyer", order("", item("book-a", 1)), domain.ErrInvalidRequest},
		{"unknown buyer", order("nobody", item("book-a", 1)), domain.ErrInvalidRequest},
		{"no items", order("buyer-1"), domain.ErrInvalidRequest},
		{"zero quantity", order("buyer-1", item("book-a", 0)), domain.ErrInvalidRequest},
		{"unknown book", order("buyer-1", item("book-a", 1), item("missing", 1)), domain.ErrBookNotFound},
		{"too many", order("buyer-1", item("book-p", 11)), domain.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Place(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 0, countRows(t, db, "orders"))
	assert.Equal(t, 0, countRows(t, db, "order_items"))
	assert.Equal(t, 5, stockOf(t, db, "book-a"))
	assert.Equal(t, 10, stockOf(t, db, "book-p"))
}

func TestOrderFlow_NoOversell(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db, nil)
	ctx := context.Background()

	const stock, buyers = 5, 12
	var (
		mu       sync.Mutex
		ok, lost int
		other    []error
	)
	var g errgroup.Group
	for i := 0; i < buyers; i++ {
		g.Go(func() error {
			_, err := svc.Place(ctx, order("buyer-1", item("book-a", 1)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrStockConflict):
				lost++
			default:
				other = append(other, err)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Empty(t, other)
	assert.Equal(t, stock, ok)
	assert.Equal(t, buyers-stock, lost)
	assert.Equal(t, 0, stockOf(t, db, "book-a"))
	assert.Equal(t, stock, countRows(t, db, "orders"))
}

func TestOrderFlow_CancelledContextLeavesNoTrace(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Place(ctx, order("buyer-1", item("book-a", 1)))
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)

	assert.Equal(t, 0, countRows(t, db, "orders"))
	assert.Equal(t, 5, stockOf(t, db, "book-a"))
}

func TestOrderFlow_PublishFailureKeepsOrder(t *testing.T) {
	db := memdb(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newOrderService(db, pub)

	rc, err := svc.Place(context.Background(), order("buyer-1", item("book-p", 2)))
	require.NoError(t, err)
	assert.Equal(t, domain.Money(2500), rc.TotalAmount)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, 1, countRows(t, db, "orders"))
}

func TestOrderFlow_GetAndList(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db, nil)
	ctx := context.Background()

	first, err := svc.Place(ctx, order("buyer-1", item("book-b", 1), item("book-a", 2)))
	require.NoError(t, err)
	second, err := svc.Place(ctx, order("buyer-2", item("book-p", 1)))
	require.NoError(t, err)

	got, err := svc.Get(ctx, first.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "reader", got.BuyerUsername)
	assert.Equal(t, domain.Money(4000), got.Total)
	assert.Equal(t, 2, got.ItemCount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "book-b", got.Items[0].BookID)
	assert.Equal(t, "Book B", got.Items[0].Title)
	assert.Equal(t, domain.Money(2000), got.Items[1].Subtotal)

	_, err = svc.Get(ctx, "no-such-order")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	list, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.OrderID, list[0].ID)
	assert.Equal(t, 1, list[0].ItemCount)
	assert.Equal(t, first.OrderID, list[1].ID)

	list, err = svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOrderFlow_PlaceWithRetryStopsOnBusinessError(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db, nil)

	_, err := svc.PlaceWithRetry(context.Background(), order("buyer-1", item("book-b", 3)), services.WithBaseDelay(0))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	rc, err := svc.PlaceWithRetry(context.Background(), order("buyer-1", item("book-b", 2)), services.WithBaseDelay(0))
	require.NoError(t, err)
	assert.Equal(t, domain.Money(4000), rc.TotalAmount)
}
