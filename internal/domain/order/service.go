package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore-backend/internal/domain/book"
)

// Service converts a user's cart into a durable order. It is the only writer
// of orders and order items.
type Service struct {
	store Store
}

// NewService creates the checkout Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Checkout atomically turns the user's cart into an Order with frozen
// per-line prices, then clears the cart. The whole sequence runs inside one
// transaction with the cart rows locked, so two concurrent checkouts for the
// same user cannot both consume the same cart.
//
// Cart lines whose book no longer exists are silently dropped: they
// contribute neither an order item nor to the total, but the cart is still
// fully consumed. An entirely empty cart fails with ErrEmptyCart and creates
// nothing.
func (s *Service) Checkout(ctx context.Context, userID int64, shippingAddress, billingAddress string) (*Order, error) {
	if shippingAddress == "" || billingAddress == "" {
		return nil, ErrMissingAddress
	}

	tx, err := s.store.BeginCheckout(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "begin checkout")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := tx.CartLines(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.BookID
	}
	books, err := tx.Books(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "load books")
	}
	byID := make(map[int64]*book.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}

	// Freeze prices: every surviving line captures the current book price.
	total := decimal.Zero
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		b, ok := byID[line.BookID]
		if !ok {
			continue
		}
		items = append(items, Item{
			BookID:    line.BookID,
			BookTitle: b.Title,
			Quantity:  line.Quantity,
			Price:     b.Price,
		})
		total = total.Add(b.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	o := &Order{
		UserID:          userID,
		TotalAmount:     total,
		Status:          StatusPending,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	for i := range items {
		items[i].OrderID = o.ID
	}
	if err := tx.InsertItems(ctx, items); err != nil {
		return nil, errors.Wrap(err, "insert order items")
	}

	if err := tx.ClearCart(ctx); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit checkout")
	}

	o.Items = items
	return o, nil
}
