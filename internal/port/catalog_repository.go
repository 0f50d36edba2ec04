package port

import (
	"context"
	"errors"

	"github.com/ajmusgrove/bookstore/internal/core/domain"
)

var (
	// ErrBookNotFound means zero catalog rows matched the ISBN.
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateISBN means more than one catalog row matched one ISBN.
	// Uniqueness is an assumed invariant of the catalog, so this is a
	// data-integrity violation, not a lookup miss.
	ErrDuplicateISBN = errors.New("duplicate catalog records for isbn")
)

type CatalogRepository interface {
	// FindBook returns the single catalog record for an ISBN
	FindBook(ctx context.Context, isbn string) (*domain.Book, error)

	// ListBooks returns the whole catalog for the storefront listing
	ListBooks(ctx context.Context) ([]domain.Book, error)
}
