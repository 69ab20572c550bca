package bookstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tc "github.com/unkn0wn-root/throughcache"
)

// Placeholder selects the bind-parameter style of the SQL driver.
type Placeholder int

const (
	// Question is "?" (SQLite, MySQL).
	Question Placeholder = iota
	// Dollar is "$1", "$2", ... (PostgreSQL).
	Dollar
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type SQLConfig struct {
	DB          *sql.DB
	Table       string // default "books"
	Placeholder Placeholder
}

// SQLRepository is the relational store: one row per book keyed by id.
type SQLRepository struct {
	db *sql.DB

	selectQ string
	upsertQ string
	deleteQ string
	createQ string
}

var _ tc.Repository[string, Book] = (*SQLRepository)(nil)

func NewSQLRepository(cfg SQLConfig) (*SQLRepository, error) {
	if cfg.DB == nil {
		return nil, errors.New("bookstore: nil *sql.DB")
	}
	table := cfg.Table
	if table == "" {
		table = "books"
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("bookstore: invalid table name %q", table)
	}
	ph := func(n int) string {
		if cfg.Placeholder == Dollar {
			return "$" + strconv.Itoa(n)
		}
		return "?"
	}

	vals := make([]string, 5)
	for i := range vals {
		vals[i] = ph(i + 1)
	}
	return &SQLRepository{
		db:      cfg.DB,
		selectQ: "SELECT id, title, author, isbn, price FROM " + table + " WHERE id = " + ph(1),
		upsertQ: "INSERT INTO " + table + " (id, title, author, isbn, price) VALUES (" + strings.Join(vals, ", ") + ")" +
			" ON CONFLICT (id) DO UPDATE SET title = excluded.title, author = excluded.author," +
			" isbn = excluded.isbn, price = excluded.price",
		deleteQ: "DELETE FROM " + table + " WHERE id = " + ph(1),
		createQ: "CREATE TABLE IF NOT EXISTS " + table + " (" +
			"id TEXT PRIMARY KEY, title TEXT NOT NULL, author TEXT NOT NULL, " +
			"isbn TEXT NOT NULL, price DOUBLE PRECISION NOT NULL)",
	}, nil
}

// Migrate creates the table when it does not exist.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, r.createQ)
	return err
}

func (r *SQLRepository) Get(ctx context.Context, id string) (Book, bool, error) {
	var b Book
	err := r.db.QueryRowContext(ctx, r.selectQ, id).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, err
	}
	return b, true, nil
}

// Put upserts the row for id. The stored id is always the key, whatever
// b.ID says.
func (r *SQLRepository) Put(ctx context.Context, id string, b Book) error {
	_, err := r.db.ExecContext(ctx, r.upsertQ, id, b.Title, b.Author, b.ISBN, b.Price)
	return err
}

func (r *SQLRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.deleteQ, id)
	return err
}
