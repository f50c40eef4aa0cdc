// Package handler exposes the bookstore API over HTTP. Every response uses
// the JSON envelope {"success": bool, ...}; failures add a "message" field.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/bookstore-backend/internal/domain/book"
	"github.com/xenking/bookstore-backend/internal/domain/cart"
	"github.com/xenking/bookstore-backend/internal/domain/order"
	"github.com/xenking/bookstore-backend/internal/domain/payment"
)

// timeLayout is the timestamp format used in response bodies.
const timeLayout = "2006-01-02 15:04:05"

// dateLayout is the publication date format in request and response bodies.
const dateLayout = "2006-01-02"

// Handler serves the API, delegating business logic to the injected domain
// services and repositories.
type Handler struct {
	books    book.Repository
	cart     *cart.Service
	checkout *order.Service
	orders   order.Repository
	payments *payment.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	books book.Repository,
	cartSvc *cart.Service,
	checkout *order.Service,
	orders order.Repository,
	payments *payment.Service,
) *Handler {
	return &Handler{
		books:    books,
		cart:     cartSvc,
		checkout: checkout,
		orders:   orders,
		payments: payments,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/books", h.listBooks)
	mux.HandleFunc("GET /api/books/featured", h.featuredBooks)
	mux.HandleFunc("GET /api/books/search", h.searchBooks)
	mux.HandleFunc("GET /api/books/{id}", h.getBook)
	mux.HandleFunc("POST /api/admin/books", h.createBook)
	mux.HandleFunc("PUT /api/admin/books/{id}", h.updateBook)
	mux.HandleFunc("DELETE /api/admin/books/{id}", h.deleteBook)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/add", h.addToCart)
	mux.HandleFunc("PUT /api/cart/update", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/remove/{id}", h.removeFromCart)
	mux.HandleFunc("DELETE /api/cart/clear", h.clearCart)

	mux.HandleFunc("POST /api/checkout", h.placeOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("POST /api/payment/create-intent", h.createPaymentIntent)
	mux.HandleFunc("POST /api/payment/confirm", h.confirmPayment)

	return mux
}

// envelope is a success response body. writeOK adds "success": true.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

func writeMissingField(w http.ResponseWriter, field string) {
	writeError(w, http.StatusBadRequest, "Missing required field: "+field)
}

// serverError logs the unexpected error and responds 500 without leaking
// internals.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON parses the request body into dst. A false return means the
// response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// pathID parses the {id} path segment. A false return means the response has
// already been written.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// queryUserID extracts the required user_id query parameter. There is no
// default identity; the caller always names the principal.
func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		writeMissingField(w, "user_id")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user_id")
		return 0, false
	}
	return id, true
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
