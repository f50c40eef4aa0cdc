package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/bookstore-backend/internal/domain/order"
)

type orderItemJSON struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	BookID    int64   `json:"book_id"`
	BookTitle string  `json:"book_title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
	CreatedAt string  `json:"created_at"`
}

type orderJSON struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	TotalAmount     float64         `json:"total_amount"`
	Status          string          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	PaymentID       *string         `json:"payment_id"`
	Items           []orderItemJSON `json:"items"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func toOrderJSON(o *order.Order) orderJSON {
	out := orderJSON{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Items:           make([]orderItemJSON, len(o.Items)),
		CreatedAt:       fmtTime(o.CreatedAt),
		UpdatedAt:       fmtTime(o.UpdatedAt),
	}
	if o.PaymentID != "" {
		pid := o.PaymentID
		out.PaymentID = &pid
	}
	for i, it := range o.Items {
		out.Items[i] = orderItemJSON{
			ID:        it.ID,
			OrderID:   it.OrderID,
			BookID:    it.BookID,
			BookTitle: it.BookTitle,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
			Subtotal:  it.Subtotal().InexactFloat64(),
			CreatedAt: fmtTime(it.CreatedAt),
		}
	}
	return out
}

type placeOrderRequest struct {
	UserID          *int64  `json:"user_id"`
	ShippingAddress *string `json:"shipping_address"`
	BillingAddress  *string `json:"billing_address"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.ShippingAddress == nil || *req.ShippingAddress == "":
		writeMissingField(w, "shipping_address")
		return
	case req.BillingAddress == nil || *req.BillingAddress == "":
		writeMissingField(w, "billing_address")
		return
	case req.UserID == nil:
		writeMissingField(w, "user_id")
		return
	}

	o, err := h.checkout.Checkout(r.Context(), *req.UserID, *req.ShippingAddress, *req.BillingAddress)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, order.ErrMissingAddress):
			writeError(w, http.StatusBadRequest, "Shipping and billing addresses are required")
		default:
			serverError(w, r, err)
		}
		return
	}
	writeOK(w, http.StatusCreated, envelope{
		"message": "Order created successfully",
		"order":   toOrderJSON(o),
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	list, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	out := make([]orderJSON, len(list))
	for i := range list {
		out[i] = toOrderJSON(&list[i])
	}
	writeOK(w, http.StatusOK, envelope{"orders": out})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"order": toOrderJSON(o)})
}
