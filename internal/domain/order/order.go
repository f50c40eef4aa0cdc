package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore-backend/internal/domain/book"
	"github.com/xenking/bookstore-backend/internal/domain/cart"
)

// Status is an order's lifecycle state. Only pending and paid are ever
// written; payment confirmation is the single transition.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Sentinel errors for checkout and order lookups.
var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingAddress = errors.New("shipping and billing addresses are required")
)

// Order is the record of a placed purchase. TotalAmount and Items are frozen
// at checkout; only Status and PaymentID change afterwards, once, on payment
// confirmation.
type Order struct {
	ID              int64
	UserID          int64
	TotalAmount     decimal.Decimal
	Status          Status
	ShippingAddress string
	BillingAddress  string
	PaymentID       string
	Items           []Item
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item is a frozen snapshot of one purchased line. Price is the book's price
// at checkout time and is never re-read from the catalog.
type Item struct {
	ID        int64
	OrderID   int64
	BookID    int64
	BookTitle string
	Quantity  int
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Subtotal is derived, not stored.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Repository defines read and payment-update operations on persisted orders.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	// MarkPaid sets the payment reference and flips the status to paid.
	// Returns ErrNotFound when the order does not exist.
	MarkPaid(ctx context.Context, id int64, paymentID string) (*Order, error)
}

// Store opens checkout transactions.
type Store interface {
	// BeginCheckout starts a transaction scoped to one user's cart. The
	// returned Tx must hold row locks on that cart for its whole lifetime so
	// that concurrent checkouts for the same user serialize.
	BeginCheckout(ctx context.Context, userID int64) (Tx, error)
}

// Tx is a single atomic checkout unit: either all of order, items, and
// cart-clear persist, or none do.
type Tx interface {
	// CartLines returns the user's cart rows, locked until Commit or Rollback.
	CartLines(ctx context.Context) ([]cart.Item, error)
	Books(ctx context.Context, ids []int64) ([]book.Book, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, items []Item) error
	ClearCart(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
