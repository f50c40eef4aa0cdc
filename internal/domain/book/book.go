package book

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested book does not exist.
var ErrNotFound = errors.New("book not found")

// Book represents a catalog entry available for purchase.
type Book struct {
	ID              int64
	Title           string
	Author          string
	Description     string
	Price           decimal.Decimal
	CoverImage      string
	ISBN            string
	PublicationDate *time.Time
	Pages           int
	Stock           int
	Featured        bool
	Category        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filter narrows catalog listings. Zero values mean "no constraint";
// Featured=true limits the listing to featured books only.
type Filter struct {
	Category string
	Featured bool
}

// Patch is a partial update for a book. Only non-nil fields are applied.
type Patch struct {
	Title           *string
	Author          *string
	Description     *string
	Price           *decimal.Decimal
	CoverImage      *string
	ISBN            *string
	PublicationDate *time.Time
	Pages           *int
	Stock           *int
	Featured        *bool
	Category        *string
}

// Repository defines persistence operations for the book catalog.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Book, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Book, error)
	Search(ctx context.Context, query string) ([]Book, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, id int64, p Patch) (*Book, error)
	Delete(ctx context.Context, id int64) error
}
