package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
	"github.com/ajmusgrove/bookstore/internal/port"
)

// MySQLAdapter backs both keyed read-only stores: the book catalog and the
// deployment parameter table.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) FindBook(ctx context.Context, isbn string) (*domain.Book, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT isbn, title, author, price_cents
		FROM books WHERE isbn = ?`, isbn,
	)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &b.PriceCents); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read books: %w", err)
	}

	// The ISBN column carries no unique constraint, so a bad import can
	// produce several rows. That is an integrity error, not a match.
	switch len(books) {
	case 0:
		return nil, port.ErrBookNotFound
	case 1:
		return &books[0], nil
	default:
		return nil, fmt.Errorf("%w: %s matched %d rows", port.ErrDuplicateISBN, isbn, len(books))
	}
}

func (m *MySQLAdapter) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT isbn, title, author, price_cents
		FROM books ORDER BY title`,
	)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &b.PriceCents); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read books: %w", err)
	}

	return books, nil
}

func (m *MySQLAdapter) GetParam(ctx context.Context, name string) (string, error) {
	var value string
	err := m.db.QueryRowContext(ctx, `
		SELECT value FROM params WHERE name = ?`, name,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", port.ErrParamNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("query param: %w", err)
	}

	return value, nil
}
