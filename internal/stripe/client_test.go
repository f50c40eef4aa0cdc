package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookstore-backend/internal/domain/payment"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		SecretKey: "sk_test_123",
		BaseURL:   srv.URL,
		Timeout:   time.Second,
	})
}

func TestCreateIntent(t *testing.T) {
	t.Run("posts the form and returns the secret", func(t *testing.T) {
		var gotPath, gotUser string
		var gotForm map[string]string

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUser, _, _ = r.BasicAuth()
			require.NoError(t, r.ParseForm())
			gotForm = map[string]string{}
			for k := range r.PostForm {
				gotForm[k] = r.PostForm.Get(k)
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret_abc"}`))
		})

		intent, err := c.CreateIntent(context.Background(), 2500, "usd", map[string]string{
			"order_id": "77",
		})
		require.NoError(t, err)

		assert.Equal(t, "/payment_intents", gotPath)
		assert.Equal(t, "sk_test_123", gotUser)
		assert.Equal(t, "2500", gotForm["amount"])
		assert.Equal(t, "usd", gotForm["currency"])
		assert.Equal(t, "77", gotForm["metadata[order_id]"])

		assert.Equal(t, "pi_123", intent.ID)
		assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	})

	t.Run("api error message passes through", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":{"message":"Your card was declined.","type":"card_error"}}`))
		})

		_, err := c.CreateIntent(context.Background(), 100, "usd", nil)
		require.Error(t, err)

		gw, ok := payment.AsGatewayError(err)
		require.True(t, ok, "expected *payment.GatewayError, got %T", err)
		assert.Equal(t, "Your card was declined.", gw.Message)
	})

	t.Run("empty error body falls back to HTTP status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.CreateIntent(context.Background(), 100, "usd", nil)
		require.Error(t, err)

		gw, ok := payment.AsGatewayError(err)
		require.True(t, ok)
		assert.Contains(t, gw.Message, "500")
	})

	t.Run("transport failure is a gateway error", func(t *testing.T) {
		c := New(Config{
			SecretKey: "sk_test_123",
			BaseURL:   "http://127.0.0.1:1", // nothing listens here
			Timeout:   time.Second,
		})

		_, err := c.CreateIntent(context.Background(), 100, "usd", nil)
		require.Error(t, err)

		_, ok := payment.AsGatewayError(err)
		assert.True(t, ok, "expected *payment.GatewayError, got %T", err)
	})
}
