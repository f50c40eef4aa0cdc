package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookstore-backend/internal/domain/book"
)

// --- Mock implementations ---

type mockBookRepo struct {
	byID   map[int64]*book.Book
	getErr error
}

func (m *mockBookRepo) List(_ context.Context, _ book.Filter) ([]book.Book, error) {
	return nil, nil
}

func (m *mockBookRepo) GetByID(_ context.Context, id int64) (*book.Book, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.byID[id]
	if !ok {
		return nil, book.ErrNotFound
	}
	return b, nil
}

func (m *mockBookRepo) GetByIDs(_ context.Context, ids []int64) ([]book.Book, error) {
	var out []book.Book
	for _, id := range ids {
		if b, ok := m.byID[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBookRepo) Search(_ context.Context, _ string) ([]book.Book, error) {
	return nil, nil
}

func (m *mockBookRepo) Create(_ context.Context, _ *book.Book) error { return nil }

func (m *mockBookRepo) Update(_ context.Context, _ int64, _ book.Patch) (*book.Book, error) {
	return nil, book.ErrNotFound
}

func (m *mockBookRepo) Delete(_ context.Context, _ int64) error { return nil }

type mockItemRepo struct {
	items     map[int64]*Item
	nextID    int64
	createErr error
	setErr    error
}

func newMockItemRepo(items ...Item) *mockItemRepo {
	m := &mockItemRepo{items: make(map[int64]*Item), nextID: 1}
	for i := range items {
		it := items[i]
		m.items[it.ID] = &it
		if it.ID >= m.nextID {
			m.nextID = it.ID + 1
		}
	}
	return m
}

func (m *mockItemRepo) ListByUser(_ context.Context, userID int64) ([]Item, error) {
	var out []Item
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *mockItemRepo) FindByUserAndBook(_ context.Context, userID, bookID int64) (*Item, error) {
	for _, it := range m.items {
		if it.UserID == userID && it.BookID == bookID {
			return it, nil
		}
	}
	return nil, ErrItemNotFound
}

func (m *mockItemRepo) GetByID(_ context.Context, id int64) (*Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return it, nil
}

func (m *mockItemRepo) Create(_ context.Context, item *Item) error {
	if m.createErr != nil {
		return m.createErr
	}
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return nil
}

func (m *mockItemRepo) SetQuantity(_ context.Context, id int64, quantity int) (*Item, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	it, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	it.Quantity = quantity
	return it, nil
}

func (m *mockItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemRepo) ClearUser(_ context.Context, userID int64) error {
	for id, it := range m.items {
		if it.UserID == userID {
			delete(m.items, id)
		}
	}
	return nil
}

// --- Helpers ---

func newTestBook(id int64, price string) *book.Book {
	return &book.Book{
		ID:     id,
		Title:  "Test Book",
		Author: "Test Author",
		Price:  decimal.RequireFromString(price),
	}
}

func newBookRepo(books ...*book.Book) *mockBookRepo {
	byID := make(map[int64]*book.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	return &mockBookRepo{byID: byID}
}

// --- Tests ---

func TestServiceGet(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		svc := NewService(newMockItemRepo(), newBookRepo())

		view, err := svc.Get(context.Background(), 5)
		require.NoError(t, err)
		assert.Empty(t, view.Lines)
		assert.True(t, view.Total.IsZero())
		assert.Zero(t, view.Count)
	})

	t.Run("hydrates lines and sums live prices", func(t *testing.T) {
		items := newMockItemRepo(
			Item{ID: 1, UserID: 5, BookID: 1, Quantity: 2},
			Item{ID: 2, UserID: 5, BookID: 2, Quantity: 1},
		)
		books := newBookRepo(newTestBook(1, "10.00"), newTestBook(2, "12.50"))
		svc := NewService(items, books)

		view, err := svc.Get(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, view.Lines, 2)
		assert.Equal(t, 2, view.Count)
		assert.Equal(t, "32.50", view.Total.StringFixed(2))
	})

	t.Run("dangling book stays listed but not totalled", func(t *testing.T) {
		items := newMockItemRepo(
			Item{ID: 1, UserID: 5, BookID: 1, Quantity: 2},
			Item{ID: 2, UserID: 5, BookID: 99, Quantity: 3},
		)
		books := newBookRepo(newTestBook(1, "10.00"))
		svc := NewService(items, books)

		view, err := svc.Get(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, view.Lines, 2)
		assert.Equal(t, "20.00", view.Total.StringFixed(2))

		var dangling *Line
		for i := range view.Lines {
			if view.Lines[i].Item.BookID == 99 {
				dangling = &view.Lines[i]
			}
		}
		require.NotNil(t, dangling)
		assert.Nil(t, dangling.Book)
		assert.True(t, dangling.Subtotal().IsZero())
	})

	t.Run("ignores other users", func(t *testing.T) {
		items := newMockItemRepo(
			Item{ID: 1, UserID: 5, BookID: 1, Quantity: 1},
			Item{ID: 2, UserID: 6, BookID: 1, Quantity: 4},
		)
		svc := NewService(items, newBookRepo(newTestBook(1, "10.00")))

		view, err := svc.Get(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, view.Lines, 1)
		assert.Equal(t, int64(5), view.Lines[0].Item.UserID)
	})
}

func TestServiceAdd(t *testing.T) {
	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := NewService(newMockItemRepo(), newBookRepo(newTestBook(1, "10.00")))

		for _, q := range []int{0, -1} {
			_, err := svc.Add(context.Background(), 5, 1, q)
			assert.ErrorIs(t, err, ErrInvalidQuantity)
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		svc := NewService(newMockItemRepo(), newBookRepo())

		_, err := svc.Add(context.Background(), 5, 42, 1)
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("creates a new line", func(t *testing.T) {
		items := newMockItemRepo()
		svc := NewService(items, newBookRepo(newTestBook(1, "10.00")))

		line, err := svc.Add(context.Background(), 5, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, line.Item.Quantity)
		require.NotNil(t, line.Book)
		assert.Equal(t, int64(1), line.Book.ID)
		assert.Len(t, items.items, 1)
	})

	t.Run("increments an existing line", func(t *testing.T) {
		items := newMockItemRepo(Item{ID: 1, UserID: 5, BookID: 1, Quantity: 2})
		svc := NewService(items, newBookRepo(newTestBook(1, "10.00")))

		line, err := svc.Add(context.Background(), 5, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, line.Item.Quantity)
		assert.Len(t, items.items, 1)
	})

	t.Run("create failure surfaces", func(t *testing.T) {
		items := newMockItemRepo()
		items.createErr = errors.New("db down")
		svc := NewService(items, newBookRepo(newTestBook(1, "10.00")))

		_, err := svc.Add(context.Background(), 5, 1, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create cart item")
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Run("sets quantity", func(t *testing.T) {
		items := newMockItemRepo(Item{ID: 1, UserID: 5, BookID: 1, Quantity: 2})
		svc := NewService(items, newBookRepo())

		removed, err := svc.Update(context.Background(), 1, 7)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, 7, items.items[1].Quantity)
	})

	t.Run("zero quantity removes", func(t *testing.T) {
		items := newMockItemRepo(Item{ID: 1, UserID: 5, BookID: 1, Quantity: 2})
		svc := NewService(items, newBookRepo())

		removed, err := svc.Update(context.Background(), 1, 0)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Empty(t, items.items)
	})

	t.Run("unknown item", func(t *testing.T) {
		svc := NewService(newMockItemRepo(), newBookRepo())

		_, err := svc.Update(context.Background(), 99, 1)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestServiceRemove(t *testing.T) {
	items := newMockItemRepo(Item{ID: 1, UserID: 5, BookID: 1, Quantity: 1})
	svc := NewService(items, newBookRepo())

	require.NoError(t, svc.Remove(context.Background(), 1))
	assert.Empty(t, items.items)

	err := svc.Remove(context.Background(), 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestServiceClear(t *testing.T) {
	items := newMockItemRepo(
		Item{ID: 1, UserID: 5, BookID: 1, Quantity: 1},
		Item{ID: 2, UserID: 6, BookID: 1, Quantity: 1},
	)
	svc := NewService(items, newBookRepo())

	require.NoError(t, svc.Clear(context.Background(), 5))
	assert.Len(t, items.items, 1)

	// clearing an empty cart succeeds
	require.NoError(t, svc.Clear(context.Background(), 5))
}
