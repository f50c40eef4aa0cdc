package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookstore-backend/internal/domain/cart"
)

const cartColumns = `id, user_id, book_id, quantity, created_at, updated_at`

const (
	listCartByUserSQL = `SELECT ` + cartColumns + ` FROM cart_items
		WHERE user_id = $1 ORDER BY id`

	findCartItemSQL = `SELECT ` + cartColumns + ` FROM cart_items
		WHERE user_id = $1 AND book_id = $2`

	getCartItemSQL = `SELECT ` + cartColumns + ` FROM cart_items WHERE id = $1`

	createCartItemSQL = `INSERT INTO cart_items (user_id, book_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	setCartQuantitySQL = `UPDATE cart_items SET quantity = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + cartColumns

	deleteCartItemSQL = `DELETE FROM cart_items WHERE id = $1`

	clearCartSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListByUser returns all cart items for a user ordered by ID.
func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, listCartByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// FindByUserAndBook returns the single cart item for a (user, book) pair.
// Returns cart.ErrItemNotFound when no row exists.
func (r *CartRepository) FindByUserAndBook(ctx context.Context, userID, bookID int64) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, findCartItemSQL, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("finding cart item: %w", err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrItemNotFound
		}
		return nil, fmt.Errorf("finding cart item: %w", err)
	}
	return &item, nil
}

// GetByID returns a cart item by its identifier.
// Returns cart.ErrItemNotFound when no row exists.
func (r *CartRepository) GetByID(ctx context.Context, id int64) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, getCartItemSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting cart item %d: %w", id, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting cart item %d: %w", id, err)
	}
	return &item, nil
}

// Create persists a new cart item and fills its generated fields.
func (r *CartRepository) Create(ctx context.Context, item *cart.Item) error {
	err := r.pool.QueryRow(ctx, createCartItemSQL,
		item.UserID, item.BookID, item.Quantity,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating cart item: %w", err)
	}
	return nil
}

// SetQuantity sets a cart item's quantity exactly and returns the updated
// row. Returns cart.ErrItemNotFound when no row exists.
func (r *CartRepository) SetQuantity(ctx context.Context, id int64, quantity int) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, setCartQuantitySQL, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("updating cart item %d: %w", id, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrItemNotFound
		}
		return nil, fmt.Errorf("updating cart item %d: %w", id, err)
	}
	return &item, nil
}

// Delete removes a cart item. Returns cart.ErrItemNotFound when no row was
// deleted.
func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteCartItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting cart item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// ClearUser deletes all cart items for a user. Clearing an empty cart is not
// an error.
func (r *CartRepository) ClearUser(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, userID); err != nil {
		return fmt.Errorf("clearing cart for user %d: %w", userID, err)
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var item cart.Item
	err := row.Scan(
		&item.ID, &item.UserID, &item.BookID, &item.Quantity,
		&item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}
