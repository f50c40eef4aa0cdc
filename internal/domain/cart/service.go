package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore-backend/internal/domain/book"
)

// Service manages per-user shopping carts. All operations take an explicit
// user principal; there is no default identity.
type Service struct {
	items Repository
	books book.Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(items Repository, books book.Repository) *Service {
	return &Service{items: items, books: books}
}

// Get returns the user's cart hydrated with catalog data. Lines whose book
// no longer exists are still returned but excluded from the total.
func (s *Service) Get(ctx context.Context, userID int64) (*View, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}

	byID := make(map[int64]*book.Book, len(ids))
	if len(ids) > 0 {
		books, err := s.books.GetByIDs(ctx, ids)
		if err != nil {
			return nil, errors.Wrap(err, "get books")
		}
		for i := range books {
			byID[books[i].ID] = &books[i]
		}
	}

	view := &View{
		Lines: make([]Line, len(items)),
		Total: decimal.Zero,
		Count: len(items),
	}
	for i, item := range items {
		line := Line{Item: item, Book: byID[item.BookID]}
		view.Lines[i] = line
		view.Total = view.Total.Add(line.Subtotal())
	}
	return view, nil
}

// Add puts quantity copies of a book into the user's cart. When a line for
// (userID, bookID) already exists its quantity is incremented; otherwise a
// new line is created. Returns book.ErrNotFound when the book does not exist.
func (s *Service) Add(ctx context.Context, userID, bookID int64, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			return nil, book.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get book %d", bookID)
	}

	existing, err := s.items.FindByUserAndBook(ctx, userID, bookID)
	switch {
	case err == nil:
		updated, err := s.items.SetQuantity(ctx, existing.ID, existing.Quantity+quantity)
		if err != nil {
			return nil, errors.Wrap(err, "increment cart item")
		}
		return &Line{Item: *updated, Book: b}, nil

	case errors.Is(err, ErrItemNotFound):
		item := &Item{UserID: userID, BookID: bookID, Quantity: quantity}
		if err := s.items.Create(ctx, item); err != nil {
			return nil, errors.Wrap(err, "create cart item")
		}
		return &Line{Item: *item, Book: b}, nil

	default:
		return nil, errors.Wrap(err, "find cart item")
	}
}

// Update sets a cart item's quantity exactly. A quantity of zero or less
// removes the item instead; the returned flag reports that removal path.
func (s *Service) Update(ctx context.Context, itemID int64, quantity int) (removed bool, err error) {
	if quantity <= 0 {
		if err := s.items.Delete(ctx, itemID); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err := s.items.SetQuantity(ctx, itemID, quantity); err != nil {
		return false, err
	}
	return false, nil
}

// Remove deletes a cart item. Returns ErrItemNotFound when no such item
// exists.
func (s *Service) Remove(ctx context.Context, itemID int64) error {
	return s.items.Delete(ctx, itemID)
}

// Clear empties the user's cart. Clearing an already-empty cart succeeds.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.items.ClearUser(ctx, userID)
}
