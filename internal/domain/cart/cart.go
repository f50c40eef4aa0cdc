package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore-backend/internal/domain/book"
)

// Sentinel errors for cart operations.
var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Item is a single (user, book) selection in a shopping cart.
// At most one Item exists per (UserID, BookID); adding the same book again
// increments the existing row.
type Item struct {
	ID        int64
	UserID    int64
	BookID    int64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line is a cart item hydrated with its catalog entry. Book is nil when the
// referenced book has been deleted from the catalog.
type Line struct {
	Item Item
	Book *book.Book
}

// Subtotal is the live price of the line, or zero for a dangling book
// reference.
func (l Line) Subtotal() decimal.Decimal {
	if l.Book == nil {
		return decimal.Zero
	}
	return l.Book.Price.Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

// View is the full cart of one user: hydrated lines, the live total over
// lines whose book still resolves, and the number of lines.
type View struct {
	Lines []Line
	Total decimal.Decimal
	Count int
}

// Repository defines persistence operations for cart items.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Item, error)
	FindByUserAndBook(ctx context.Context, userID, bookID int64) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item *Item) error
	SetQuantity(ctx context.Context, id int64, quantity int) (*Item, error)
	Delete(ctx context.Context, id int64) error
	ClearUser(ctx context.Context, userID int64) error
}
