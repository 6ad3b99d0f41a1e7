package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	applog "litshop/internal/log"
)

// OpenDB opens the store of record and ensures the schema exists.
// driver is "sqlite" (or "sqlite3" with the sqlite_cgo tag), "postgres" or "pgx".
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	if isSQLite(driver) {
		driver = sqliteDriver
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	configurePool(db)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func isSQLite(driver string) bool { return driver == "sqlite" || driver == "sqlite3" }

// dialect maps the driver name to the goqu dialect used for built queries.
func dialect(db *sqlx.DB) string {
	switch db.DriverName() {
	case "postgres", "pgx":
		return "postgres"
	default:
		return "sqlite3"
	}
}

func configurePool(db *sqlx.DB) {
	if isSQLite(db.DriverName()) {
		// One connection serialises writers and keeps a :memory: database alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at TEXT
)`,
	`CREATE TABLE IF NOT EXISTS books(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL UNIQUE,
  author TEXT NOT NULL DEFAULT '',
  price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  category_id TEXT NULL REFERENCES categories(id) ON DELETE SET NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_books_category ON books(category_id)`,
	`CREATE TABLE IF NOT EXISTS buyers(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL REFERENCES buyers(id),
  total_cents BIGINT NOT NULL CHECK (total_cents >= 0),
  created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
	// book_id is cleared, not cascaded, so sale history survives catalog deletes
	`CREATE TABLE IF NOT EXISTS order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  line_no INTEGER NOT NULL,
  book_id TEXT NULL REFERENCES books(id) ON DELETE SET NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  price_cents BIGINT NOT NULL CHECK (price_cents >= 0)
)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_book ON order_items(book_id)`,
}

func ensureSchema(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

// SeedDemo inserts a demo catalog and buyers when the store is empty.
// Safe to run on every startup (idempotent).
func SeedDemo(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Info(nil, "seed.demo", map[string]any{"categories": 3, "books": 6, "buyers": 3})

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	cats := [][2]string{
		{"programming", "Programming"},
		{"networking", "Networking"},
		{"databases", "Databases"},
	}
	for _, c := range cats {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO categories(id,name,created_at) VALUES(?,?,?)`), c[0], c[1], now); err != nil {
			return err
		}
	}

	type book struct {
		id, title, author, cat string
		price                  int64
		stock                  int
	}
	books := []book{
		{"go-prog-lang", "The Go Programming Language", "Donovan & Kernighan", "programming", 3999, 12},
		{"sicp", "Structure and Interpretation of Computer Programs", "Abelson & Sussman", "programming", 5500, 4},
		{"tcp-ip-illustrated", "TCP/IP Illustrated, Vol. 1", "W. Richard Stevens", "networking", 6999, 3},
		{"computer-networks", "Computer Networks", "Tanenbaum & Wetherall", "networking", 8950, 6},
		{"ddia", "Designing Data-Intensive Applications", "Martin Kleppmann", "databases", 4499, 10},
		{"db-internals", "Database Internals", "Alex Petrov", "databases", 4750, 2},
	}
	for _, b := range books {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO books(id,title,author,price_cents,stock,category_id)
			VALUES(?,?,?,?,?,?)`), b.id, b.title, b.author, b.price, b.stock, b.cat); err != nil {
			return err
		}
	}

	buyers := [][3]string{
		{"b-ada", "ada", "Passw0rd!"},
		{"b-linus", "linus", "Passw0rd!"},
		{"b-grace", "grace", "Passw0rd!"},
	}
	for _, u := range buyers {
		h, err := bcrypt.GenerateFromPassword([]byte(u[2]), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO buyers(id,username,password_hash) VALUES(?,?,?)
			ON CONFLICT(username) DO NOTHING`), u[0], u[1], string(h)); err != nil {
			return err
		}
	}

	return tx.Commit()
}
