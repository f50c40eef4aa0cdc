package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore-backend/internal/domain/book"
)

// bookJSON is the response shape for a catalog entry.
type bookJSON struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	CoverImage      string  `json:"cover_image"`
	ISBN            string  `json:"isbn"`
	PublicationDate *string `json:"publication_date"`
	Pages           int     `json:"pages"`
	Stock           int     `json:"stock"`
	Featured        bool    `json:"featured"`
	Category        string  `json:"category"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toBookJSON(b *book.Book) bookJSON {
	out := bookJSON{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price.InexactFloat64(),
		CoverImage:  b.CoverImage,
		ISBN:        b.ISBN,
		Pages:       b.Pages,
		Stock:       b.Stock,
		Featured:    b.Featured,
		Category:    b.Category,
		CreatedAt:   fmtTime(b.CreatedAt),
		UpdatedAt:   fmtTime(b.UpdatedAt),
	}
	if b.PublicationDate != nil {
		d := b.PublicationDate.Format(dateLayout)
		out.PublicationDate = &d
	}
	return out
}

func toBookList(books []book.Book) []bookJSON {
	out := make([]bookJSON, len(books))
	for i := range books {
		out[i] = toBookJSON(&books[i])
	}
	return out
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := book.Filter{
		Category: q.Get("category"),
		Featured: q.Get("featured") == "true",
	}

	books, err := h.books.List(r.Context(), f)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"books": toBookList(books)})
}

func (h *Handler) featuredBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context(), book.Filter{Featured: true})
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"books": toBookList(books)})
}

func (h *Handler) searchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	books, err := h.books.Search(r.Context(), query)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"books": toBookList(books)})
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := h.books.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"book": toBookJSON(b)})
}

// createBookRequest uses pointers for the required fields so absence is
// distinguishable from zero values.
type createBookRequest struct {
	Title           *string          `json:"title"`
	Author          *string          `json:"author"`
	Price           *decimal.Decimal `json:"price"`
	Description     string           `json:"description"`
	CoverImage      string           `json:"cover_image"`
	ISBN            string           `json:"isbn"`
	PublicationDate string           `json:"publication_date"`
	Pages           int              `json:"pages"`
	Stock           int              `json:"stock"`
	Featured        bool             `json:"featured"`
	Category        string           `json:"category"`
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.Title == nil:
		writeMissingField(w, "title")
		return
	case req.Author == nil:
		writeMissingField(w, "author")
		return
	case req.Price == nil:
		writeMissingField(w, "price")
		return
	}

	b := &book.Book{
		Title:       *req.Title,
		Author:      *req.Author,
		Price:       *req.Price,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		ISBN:        req.ISBN,
		Pages:       req.Pages,
		Stock:       req.Stock,
		Featured:    req.Featured,
		Category:    req.Category,
	}
	if req.PublicationDate != "" {
		d, err := time.Parse(dateLayout, req.PublicationDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid publication_date, expected YYYY-MM-DD")
			return
		}
		b.PublicationDate = &d
	}

	if err := h.books.Create(r.Context(), b); err != nil {
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, envelope{
		"message": "Book created successfully",
		"book":    toBookJSON(b),
	})
}

// updateBookRequest is an all-optional patch body; only present fields are
// applied.
type updateBookRequest struct {
	Title           *string          `json:"title"`
	Author          *string          `json:"author"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	CoverImage      *string          `json:"cover_image"`
	ISBN            *string          `json:"isbn"`
	PublicationDate *string          `json:"publication_date"`
	Pages           *int             `json:"pages"`
	Stock           *int             `json:"stock"`
	Featured        *bool            `json:"featured"`
	Category        *string          `json:"category"`
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := book.Patch{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Price:       req.Price,
		CoverImage:  req.CoverImage,
		ISBN:        req.ISBN,
		Pages:       req.Pages,
		Stock:       req.Stock,
		Featured:    req.Featured,
		Category:    req.Category,
	}
	if req.PublicationDate != nil {
		d, err := time.Parse(dateLayout, *req.PublicationDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid publication_date, expected YYYY-MM-DD")
			return
		}
		p.PublicationDate = &d
	}

	b, err := h.books.Update(r.Context(), id, p)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{
		"message": "Book updated successfully",
		"book":    toBookJSON(b),
	})
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.books.Delete(r.Context(), id); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Book deleted successfully"})
}
