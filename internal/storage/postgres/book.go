package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookstore-backend/internal/domain/book"
)

const bookColumns = `id, title, author, description, price, cover_image,
	COALESCE(isbn, ''), publication_date, pages, stock, featured, category,
	created_at, updated_at`

const (
	getBookByIDSQL = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	getBooksByIDsSQL = `SELECT ` + bookColumns + ` FROM books WHERE id = ANY($1) ORDER BY id`

	searchBooksSQL = `SELECT ` + bookColumns + ` FROM books
		WHERE title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%'
		ORDER BY id`

	createBookSQL = `INSERT INTO books
		(title, author, description, price, cover_image, isbn, publication_date, pages, stock, featured, category)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	deleteBookSQL = `DELETE FROM books WHERE id = $1`
)

var _ book.Repository = (*BookRepository)(nil)

// BookRepository implements book.Repository backed by PostgreSQL.
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a BookRepository that uses the given pool.
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

// List returns catalog books, optionally narrowed by category and featured
// flag, ordered by ID.
func (r *BookRepository) List(ctx context.Context, f book.Filter) ([]book.Book, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Featured {
		where = append(where, "featured")
	}

	sql := "SELECT " + bookColumns + " FROM books"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY id"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return pgx.CollectRows(rows, scanBook)
}

// GetByID returns a single book by its identifier.
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	rows, err := r.pool.Query(ctx, getBookByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, book.ErrNotFound
		}
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}
	return &b, nil
}

// GetByIDs returns books matching any of the given IDs. Missing IDs are
// simply absent from the result.
func (r *BookRepository) GetByIDs(ctx context.Context, ids []int64) ([]book.Book, error) {
	rows, err := r.pool.Query(ctx, getBooksByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting books by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanBook)
}

// Search returns books whose title or author contains the query,
// case-insensitively.
func (r *BookRepository) Search(ctx context.Context, query string) ([]book.Book, error) {
	rows, err := r.pool.Query(ctx, searchBooksSQL, query)
	if err != nil {
		return nil, fmt.Errorf("searching books: %w", err)
	}
	return pgx.CollectRows(rows, scanBook)
}

// Create persists a new book and fills its generated fields.
func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	err := r.pool.QueryRow(ctx, createBookSQL,
		b.Title, b.Author, b.Description, b.Price, b.CoverImage, b.ISBN,
		b.PublicationDate, b.Pages, b.Stock, b.Featured, b.Category,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating book %q: %w", b.Title, err)
	}
	return nil
}

// Update applies the non-nil fields of the patch and returns the updated
// book. Returns book.ErrNotFound when the book does not exist.
func (r *BookRepository) Update(ctx context.Context, id int64, p book.Patch) (*book.Book, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Author != nil {
		set("author", *p.Author)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Price != nil {
		set("price", *p.Price)
	}
	if p.CoverImage != nil {
		set("cover_image", *p.CoverImage)
	}
	if p.ISBN != nil {
		set("isbn", nullIfEmpty(*p.ISBN))
	}
	if p.PublicationDate != nil {
		set("publication_date", *p.PublicationDate)
	}
	if p.Pages != nil {
		set("pages", *p.Pages)
	}
	if p.Stock != nil {
		set("stock", *p.Stock)
	}
	if p.Featured != nil {
		set("featured", *p.Featured)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	sql := fmt.Sprintf("UPDATE books SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), bookColumns)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("updating book %d: %w", id, err)
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, book.ErrNotFound
		}
		return nil, fmt.Errorf("updating book %d: %w", id, err)
	}
	return &b, nil
}

// Delete removes a book. Returns book.ErrNotFound when no row was deleted.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteBookSQL, id)
	if err != nil {
		return fmt.Errorf("deleting book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}

func scanBook(row pgx.CollectableRow) (book.Book, error) {
	var b book.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.Price, &b.CoverImage,
		&b.ISBN, &b.PublicationDate, &b.Pages, &b.Stock, &b.Featured,
		&b.Category, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// nullIfEmpty maps "" to SQL NULL so the books_isbn_unique constraint
// ignores books without an ISBN.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
