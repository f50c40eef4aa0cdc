package payment

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookstore-backend/internal/domain/order"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID    map[int64]*order.Order
	markErr error
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ int64) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, id int64, paymentID string) (*order.Order, error) {
	if m.markErr != nil {
		return nil, m.markErr
	}
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = order.StatusPaid
	o.PaymentID = paymentID
	return o, nil
}

type mockGateway struct {
	intent      *Intent
	err         error
	gotAmount   int64
	gotCurrency string
	gotMetadata map[string]string
}

func (m *mockGateway) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	m.gotAmount = amount
	m.gotCurrency = currency
	m.gotMetadata = metadata
	return m.intent, m.err
}

// --- Helpers ---

func newTestOrder(id int64, total string) *order.Order {
	return &order.Order{
		ID:          id,
		UserID:      5,
		TotalAmount: decimal.RequireFromString(total),
		Status:      order.StatusPending,
	}
}

// --- Tests ---

func TestCreateIntent(t *testing.T) {
	t.Run("converts total to minor units", func(t *testing.T) {
		tests := []struct {
			total string
			want  int64
		}{
			{"25.00", 2500},
			{"0.50", 50},
			{"10.99", 1099},
			{"0.005", 1}, // rounds, never truncates
		}
		for _, tt := range tests {
			gw := &mockGateway{intent: &Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}}
			repo := &mockOrderRepo{byID: map[int64]*order.Order{77: newTestOrder(77, tt.total)}}
			svc := NewService(repo, gw, "usd")

			secret, err := svc.CreateIntent(context.Background(), 77)
			require.NoError(t, err)
			assert.Equal(t, "pi_1_secret", secret)
			assert.Equal(t, tt.want, gw.gotAmount, "total %s", tt.total)
			assert.Equal(t, "usd", gw.gotCurrency)
		}
	})

	t.Run("tags the intent with the order id", func(t *testing.T) {
		gw := &mockGateway{intent: &Intent{ClientSecret: "sec"}}
		repo := &mockOrderRepo{byID: map[int64]*order.Order{42: newTestOrder(42, "5.00")}}
		svc := NewService(repo, gw, "usd")

		_, err := svc.CreateIntent(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, "42", gw.gotMetadata["order_id"])
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := NewService(&mockOrderRepo{byID: map[int64]*order.Order{}}, &mockGateway{}, "usd")

		_, err := svc.CreateIntent(context.Background(), 999)
		assert.ErrorIs(t, err, order.ErrNotFound)
	})

	t.Run("gateway error passes through untouched", func(t *testing.T) {
		gwErr := &GatewayError{Message: "Your card was declined."}
		repo := &mockOrderRepo{byID: map[int64]*order.Order{77: newTestOrder(77, "10.00")}}
		svc := NewService(repo, &mockGateway{err: gwErr}, "usd")

		_, err := svc.CreateIntent(context.Background(), 77)
		require.Error(t, err)

		got, ok := AsGatewayError(err)
		require.True(t, ok, "expected *GatewayError, got %T", err)
		assert.Equal(t, "Your card was declined.", got.Message)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("marks the order paid with the given payment id", func(t *testing.T) {
		repo := &mockOrderRepo{byID: map[int64]*order.Order{77: newTestOrder(77, "10.00")}}
		svc := NewService(repo, &mockGateway{}, "usd")

		o, err := svc.Confirm(context.Background(), 77, "pi_abc")
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, o.Status)
		assert.Equal(t, "pi_abc", o.PaymentID)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := NewService(&mockOrderRepo{byID: map[int64]*order.Order{}}, &mockGateway{}, "usd")

		_, err := svc.Confirm(context.Background(), 999, "pi_abc")
		assert.ErrorIs(t, err, order.ErrNotFound)
	})

	t.Run("repository failure wraps", func(t *testing.T) {
		repo := &mockOrderRepo{
			byID:    map[int64]*order.Order{77: newTestOrder(77, "10.00")},
			markErr: errors.New("db down"),
		}
		svc := NewService(repo, &mockGateway{}, "usd")

		_, err := svc.Confirm(context.Background(), 77, "pi_abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mark order 77 paid")
	})
}
