package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/bookstore-backend/internal/domain/book"
	"github.com/xenking/bookstore-backend/internal/domain/cart"
)

// cartItemJSON is the response shape for one cart line. Book is null when
// the referenced catalog entry no longer exists.
type cartItemJSON struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	Book      *bookJSON `json:"book"`
	Quantity  int       `json:"quantity"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

func toCartLineJSON(l cart.Line) cartItemJSON {
	out := cartItemJSON{
		ID:        l.Item.ID,
		UserID:    l.Item.UserID,
		BookID:    l.Item.BookID,
		Quantity:  l.Item.Quantity,
		CreatedAt: fmtTime(l.Item.CreatedAt),
		UpdatedAt: fmtTime(l.Item.UpdatedAt),
	}
	if l.Book != nil {
		b := toBookJSON(l.Book)
		out.Book = &b
	}
	return out
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	view, err := h.cart.Get(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	items := make([]cartItemJSON, len(view.Lines))
	for i, line := range view.Lines {
		items[i] = toCartLineJSON(line)
	}
	writeOK(w, http.StatusOK, envelope{
		"cart_items": items,
		"total":      view.Total.InexactFloat64(),
		"item_count": view.Count,
	})
}

type addToCartRequest struct {
	UserID   *int64 `json:"user_id"`
	BookID   *int64 `json:"book_id"`
	Quantity *int   `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.BookID == nil:
		writeMissingField(w, "book_id")
		return
	case req.Quantity == nil:
		writeMissingField(w, "quantity")
		return
	case req.UserID == nil:
		writeMissingField(w, "user_id")
		return
	}

	line, err := h.cart.Add(r.Context(), *req.UserID, *req.BookID, *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, book.ErrNotFound):
			writeError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, "Quantity must be greater than 0")
		default:
			serverError(w, r, err)
		}
		return
	}
	writeOK(w, http.StatusOK, envelope{
		"message":   "Item added to cart",
		"cart_item": toCartLineJSON(*line),
	})
}

type updateCartRequest struct {
	CartItemID *int64 `json:"cart_item_id"`
	Quantity   *int   `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.CartItemID == nil:
		writeMissingField(w, "cart_item_id")
		return
	case req.Quantity == nil:
		writeMissingField(w, "quantity")
		return
	}

	if _, err := h.cart.Update(r.Context(), *req.CartItemID, *req.Quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Cart updated successfully"})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.cart.Remove(r.Context(), id); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Item removed from cart"})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	if err := h.cart.Clear(r.Context(), userID); err != nil {
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Cart cleared successfully"})
}
