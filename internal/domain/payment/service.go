package payment

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore-backend/internal/domain/order"
)

// Service coordinates orders with the payment gateway.
type Service struct {
	orders   order.Repository
	gateway  Gateway
	currency string
}

// NewService creates the payment Service. currency is the fixed ISO currency
// code used for every intent.
func NewService(orders order.Repository, gateway Gateway, currency string) *Service {
	return &Service{
		orders:   orders,
		gateway:  gateway,
		currency: currency,
	}
}

// CreateIntent asks the gateway for a payment intent covering the order's
// frozen total, converted to minor currency units, and returns the opaque
// client secret the caller completes payment with. Returns order.ErrNotFound
// when the order does not exist; gateway failures surface as *GatewayError.
func (s *Service) CreateIntent(ctx context.Context, orderID int64) (clientSecret string, err error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return "", order.ErrNotFound
		}
		return "", errors.Wrapf(err, "get order %d", orderID)
	}

	amount := o.TotalAmount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	intent, err := s.gateway.CreateIntent(ctx, amount, s.currency, map[string]string{
		"order_id": strconv.FormatInt(o.ID, 10),
	})
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// Confirm records the payment id on the order and marks it paid. The
// transition happens exactly once per order field-wise: status and payment
// id are the only mutated columns. Returns order.ErrNotFound when the order
// does not exist.
func (s *Service) Confirm(ctx context.Context, orderID int64, paymentID string) (*order.Order, error) {
	o, err := s.orders.MarkPaid(ctx, orderID, paymentID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "mark order %d paid", orderID)
	}
	return o, nil
}
