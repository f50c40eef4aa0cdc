package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookstore-backend/internal/domain/book"
	"github.com/xenking/bookstore-backend/internal/domain/cart"
	"github.com/xenking/bookstore-backend/internal/domain/order"
)

const orderColumns = `id, user_id, total_amount, status, shipping_address,
	billing_address, COALESCE(payment_id, ''), created_at, updated_at`

const (
	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY id DESC`

	markOrderPaidSQL = `UPDATE orders
		SET payment_id = $2, status = 'paid', updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns

	// Order item rows joined with the live catalog for display titles only;
	// price and quantity always come from the frozen order_items row.
	getOrderItemsSQL = `SELECT oi.id, oi.order_id, oi.book_id,
			COALESCE(b.title, ''), oi.quantity, oi.price, oi.created_at
		FROM order_items oi
		LEFT JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`

	// FOR UPDATE serializes concurrent checkouts for the same user: the
	// second transaction blocks here until the first commits, then sees the
	// emptied cart.
	lockCartSQL = `SELECT ` + cartColumns + ` FROM cart_items
		WHERE user_id = $1 ORDER BY id FOR UPDATE`

	insertOrderSQL = `INSERT INTO orders
		(user_id, total_amount, status, shipping_address, billing_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, book_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
)

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Store      = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository and order.Store backed by
// PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns an order with its frozen items hydrated.
// Returns order.ErrNotFound when the order does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	items, err := r.itemsFor(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// ListByUser returns the user's orders, newest first, items hydrated.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	out, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int64, len(out))
	for i, o := range out {
		ids[i] = o.ID
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

// MarkPaid records the payment reference and flips the status to paid.
// Returns order.ErrNotFound when the order does not exist.
func (r *OrderRepository) MarkPaid(ctx context.Context, id int64, paymentID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, markOrderPaidSQL, id, paymentID)
	if err != nil {
		return nil, fmt.Errorf("marking order %d paid: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("marking order %d paid: %w", id, err)
	}

	items, err := r.itemsFor(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// itemsFor loads the frozen items for the given orders, grouped by order id.
func (r *OrderRepository) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]order.Item, error) {
	rows, err := r.pool.Query(ctx, getOrderItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("getting order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting order items: %w", err)
	}

	grouped := make(map[int64][]order.Item, len(orderIDs))
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}

// BeginCheckout opens a checkout transaction for one user's cart. The cart
// rows stay locked until Commit or Rollback.
func (r *OrderRepository) BeginCheckout(ctx context.Context, userID int64) (order.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning checkout: %w", err)
	}
	return &checkoutTx{tx: tx, userID: userID}, nil
}

// checkoutTx implements order.Tx over a single pgx transaction.
type checkoutTx struct {
	tx     pgx.Tx
	userID int64
}

func (t *checkoutTx) CartLines(ctx context.Context) ([]cart.Item, error) {
	rows, err := t.tx.Query(ctx, lockCartSQL, t.userID)
	if err != nil {
		return nil, fmt.Errorf("locking cart for user %d: %w", t.userID, err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

func (t *checkoutTx) Books(ctx context.Context, ids []int64) ([]book.Book, error) {
	rows, err := t.tx.Query(ctx, getBooksByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting books by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanBook)
}

func (t *checkoutTx) InsertOrder(ctx context.Context, o *order.Order) error {
	err := t.tx.QueryRow(ctx, insertOrderSQL,
		o.UserID, o.TotalAmount, o.Status, o.ShippingAddress, o.BillingAddress,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (t *checkoutTx) InsertItems(ctx context.Context, items []order.Item) error {
	for i := range items {
		err := t.tx.QueryRow(ctx, insertOrderItemSQL,
			items[i].OrderID, items[i].BookID, items[i].Quantity, items[i].Price,
		).Scan(&items[i].ID, &items[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting order item for book %d: %w", items[i].BookID, err)
		}
	}
	return nil
}

func (t *checkoutTx) ClearCart(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx, clearCartSQL, t.userID); err != nil {
		return fmt.Errorf("clearing cart for user %d: %w", t.userID, err)
	}
	return nil
}

func (t *checkoutTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *checkoutTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress,
		&o.BillingAddress, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var item order.Item
	err := row.Scan(
		&item.ID, &item.OrderID, &item.BookID, &item.BookTitle,
		&item.Quantity, &item.Price, &item.CreatedAt,
	)
	return item, err
}
