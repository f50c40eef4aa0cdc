// Package stripe implements the payment.Gateway boundary against the Stripe
// PaymentIntents API.
package stripe

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/xenking/bookstore-backend/internal/domain/payment"
)

// DefaultBaseURL is the production Stripe API endpoint.
const DefaultBaseURL = "https://api.stripe.com/v1"

var _ payment.Gateway = (*Client)(nil)

// Config holds the client settings.
type Config struct {
	// SecretKey authenticates against the Stripe API (sk_... keys).
	SecretKey string
	// BaseURL overrides the API endpoint; used by tests. Empty means
	// DefaultBaseURL.
	BaseURL string
	// Timeout bounds each gateway call. The call fails when it elapses;
	// it is never retried here.
	Timeout time.Duration
}

// Client talks to the Stripe REST API.
type Client struct {
	http *resty.Client
}

// New creates a Stripe client.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	c := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.SecretKey, "").
		SetRetryCount(0)

	return &Client{http: c}
}

// intentResponse is the subset of the PaymentIntent object we consume.
type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// apiError is Stripe's error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateIntent creates a PaymentIntent for the given minor-unit amount.
// Every failure mode, transport errors and timeouts included, is reported as
// a *payment.GatewayError carrying the provider's message.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	form := map[string]string{
		"amount":   strconv.FormatInt(amount, 10),
		"currency": currency,
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	var (
		ok   intentResponse
		fail apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&ok).
		SetError(&fail).
		Post("/payment_intents")
	if err != nil {
		return nil, &payment.GatewayError{Message: err.Error()}
	}
	if resp.IsError() {
		msg := fail.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return nil, &payment.GatewayError{Message: msg}
	}

	return &payment.Intent{
		ID:           ok.ID,
		ClientSecret: ok.ClientSecret,
	}, nil
}
