package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/bookstore-backend/internal/domain/order"
	"github.com/xenking/bookstore-backend/internal/domain/payment"
)

type createIntentRequest struct {
	OrderID *int64 `json:"order_id"`
}

func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OrderID == nil {
		writeMissingField(w, "order_id")
		return
	}

	secret, err := h.payments.CreateIntent(r.Context(), *req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "Order not found")
		default:
			if gw, ok := payment.AsGatewayError(err); ok {
				// Provider message goes back to the client unchanged so the
				// storefront can surface declined-card style details.
				writeError(w, http.StatusBadRequest, gw.Message)
				return
			}
			serverError(w, r, err)
		}
		return
	}
	writeOK(w, http.StatusOK, envelope{"clientSecret": secret})
}

type confirmPaymentRequest struct {
	OrderID   *int64  `json:"order_id"`
	PaymentID *string `json:"payment_id"`
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.OrderID == nil:
		writeMissingField(w, "order_id")
		return
	case req.PaymentID == nil || *req.PaymentID == "":
		writeMissingField(w, "payment_id")
		return
	}

	o, err := h.payments.Confirm(r.Context(), *req.OrderID, *req.PaymentID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{
		"message": "Payment confirmed",
		"order":   toOrderJSON(o),
	})
}
