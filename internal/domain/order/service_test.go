package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookstore-backend/internal/domain/book"
	"github.com/xenking/bookstore-backend/internal/domain/cart"
)

// --- Mock implementations ---

type mockTx struct {
	lines    []cart.Item
	books    []book.Book
	linesErr error
	orderErr error
	itemsErr error
	clearErr error

	inserted   *Order
	items      []Item
	cleared    bool
	committed  bool
	rolledBack bool
}

func (m *mockTx) CartLines(_ context.Context) ([]cart.Item, error) {
	return m.lines, m.linesErr
}

func (m *mockTx) Books(_ context.Context, _ []int64) ([]book.Book, error) {
	return m.books, nil
}

func (m *mockTx) InsertOrder(_ context.Context, o *Order) error {
	if m.orderErr != nil {
		return m.orderErr
	}
	o.ID = 77
	m.inserted = o
	return nil
}

func (m *mockTx) InsertItems(_ context.Context, items []Item) error {
	if m.itemsErr != nil {
		return m.itemsErr
	}
	m.items = items
	return nil
}

func (m *mockTx) ClearCart(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = true
	return nil
}

func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(_ context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

type mockStore struct {
	tx  *mockTx
	err error
}

func (m *mockStore) BeginCheckout(_ context.Context, _ int64) (Tx, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tx, nil
}

// --- Helpers ---

func newTestBook(id int64, title, price string) book.Book {
	return book.Book{
		ID:    id,
		Title: title,
		Price: decimal.RequireFromString(price),
	}
}

// --- Tests ---

func TestCheckout(t *testing.T) {
	t.Run("missing addresses", func(t *testing.T) {
		store := &mockStore{tx: &mockTx{}}
		svc := NewService(store)

		_, err := svc.Checkout(context.Background(), 5, "", "742 Evergreen Terrace")
		assert.ErrorIs(t, err, ErrMissingAddress)

		_, err = svc.Checkout(context.Background(), 5, "221B Baker St", "")
		assert.ErrorIs(t, err, ErrMissingAddress)

		// no transaction is even opened
		assert.Nil(t, store.tx.inserted)
		assert.False(t, store.tx.rolledBack)
	})

	t.Run("empty cart rolls back and creates nothing", func(t *testing.T) {
		tx := &mockTx{}
		svc := NewService(&mockStore{tx: tx})

		_, err := svc.Checkout(context.Background(), 5, "221B Baker St", "742 Evergreen Terrace")
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Nil(t, tx.inserted)
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	})

	t.Run("freezes prices and clears the cart", func(t *testing.T) {
		tx := &mockTx{
			lines: []cart.Item{
				{ID: 1, UserID: 5, BookID: 1, Quantity: 2},
				{ID: 2, UserID: 5, BookID: 2, Quantity: 1},
			},
			books: []book.Book{
				newTestBook(1, "Dune", "10.00"),
				newTestBook(2, "Hyperion", "12.50"),
			},
		}
		svc := NewService(&mockStore{tx: tx})

		o, err := svc.Checkout(context.Background(), 5, "221B Baker St", "742 Evergreen Terrace")
		require.NoError(t, err)

		assert.Equal(t, int64(77), o.ID)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, "32.50", o.TotalAmount.StringFixed(2))
		assert.Equal(t, "221B Baker St", o.ShippingAddress)
		assert.Empty(t, o.PaymentID)

		require.Len(t, o.Items, 2)
		assert.Equal(t, int64(77), o.Items[0].OrderID)
		assert.Equal(t, "Dune", o.Items[0].BookTitle)
		assert.Equal(t, "10.00", o.Items[0].Price.StringFixed(2))
		assert.Equal(t, "20.00", o.Items[0].Subtotal().StringFixed(2))

		assert.True(t, tx.cleared)
		assert.True(t, tx.committed)
		assert.False(t, tx.rolledBack)
	})

	t.Run("dangling book lines are dropped", func(t *testing.T) {
		tx := &mockTx{
			lines: []cart.Item{
				{ID: 1, UserID: 5, BookID: 1, Quantity: 2},
				{ID: 2, UserID: 5, BookID: 99, Quantity: 3},
			},
			books: []book.Book{newTestBook(1, "Dune", "10.00")},
		}
		svc := NewService(&mockStore{tx: tx})

		o, err := svc.Checkout(context.Background(), 5, "221B Baker St", "742 Evergreen Terrace")
		require.NoError(t, err)

		require.Len(t, o.Items, 1)
		assert.Equal(t, int64(1), o.Items[0].BookID)
		assert.Equal(t, "20.00", o.TotalAmount.StringFixed(2))
		assert.True(t, tx.cleared)
		assert.True(t, tx.committed)
	})

	t.Run("insert failure rolls everything back", func(t *testing.T) {
		tx := &mockTx{
			lines: []cart.Item{{ID: 1, UserID: 5, BookID: 1, Quantity: 1}},
			books: []book.Book{newTestBook(1, "Dune", "10.00")},
		}
		tx.itemsErr = errors.New("db down")
		svc := NewService(&mockStore{tx: tx})

		_, err := svc.Checkout(context.Background(), 5, "221B Baker St", "742 Evergreen Terrace")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert order items")
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.cleared)
	})

	t.Run("begin failure surfaces", func(t *testing.T) {
		svc := NewService(&mockStore{err: errors.New("pool closed")})

		_, err := svc.Checkout(context.Background(), 5, "221B Baker St", "742 Evergreen Terrace")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin checkout")
	})
}
