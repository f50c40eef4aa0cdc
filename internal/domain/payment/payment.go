// Package payment reconciles orders with an external payment provider.
//
// Confirmation is a one-shot client call: the caller-supplied payment id is
// recorded without verification against the gateway, and no amount check is
// performed. That trust boundary comes from the product behaviour this
// service implements; callers must not assume a confirmed order was actually
// charged.
package payment

import (
	"context"

	"github.com/go-faster/errors"
)

// Intent is the gateway's handle for an in-progress payment of a fixed
// amount.
type Intent struct {
	ID           string
	ClientSecret string
}

// GatewayError carries a payment provider failure verbatim. Gateway calls
// are never retried; a failed call requires the client to re-initiate.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return "payment gateway: " + e.Message
}

// AsGatewayError unwraps err to a *GatewayError, if it is one.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// Gateway is the external payment provider boundary. Amounts are integer
// minor-currency units.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
}
