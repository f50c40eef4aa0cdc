package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/bookstore-backend/internal/storage/postgres"
)

type bookJSON struct {
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	CoverImage      string          `json:"cover_image"`
	ISBN            string          `json:"isbn"`
	PublicationDate string          `json:"publication_date"`
	Pages           int             `json:"pages"`
	Stock           int             `json:"stock"`
	Featured        bool            `json:"featured"`
	Category        string          `json:"category"`
}

func main() {
	var (
		databaseURL string
		booksFile   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&booksFile, "books-file", "db/seed/books.json", "path to books JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, booksFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, booksFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedBooks(ctx, pool, booksFile)
}

const upsertBookSQL = `
INSERT INTO books (title, author, description, price, cover_image, isbn,
                   publication_date, pages, stock, featured, category)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (isbn) DO UPDATE SET
    title            = EXCLUDED.title,
    author           = EXCLUDED.author,
    description      = EXCLUDED.description,
    price            = EXCLUDED.price,
    cover_image      = EXCLUDED.cover_image,
    publication_date = EXCLUDED.publication_date,
    pages            = EXCLUDED.pages,
    stock            = EXCLUDED.stock,
    featured         = EXCLUDED.featured,
    category         = EXCLUDED.category,
    updated_at       = now()
`

func seedBooks(ctx context.Context, pool *pgxpool.Pool, booksFile string) error {
	slog.Info("reading books file", slog.String("path", booksFile))

	data, err := os.ReadFile(booksFile)
	if err != nil {
		return errors.Wrap(err, "read books file")
	}

	var books []bookJSON
	if err := json.Unmarshal(data, &books); err != nil {
		return errors.Wrap(err, "parse books JSON")
	}

	slog.Info("upserting books", slog.Int("count", len(books)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, b := range books {
		g.Go(func() error {
			var pubDate *time.Time
			if b.PublicationDate != "" {
				d, err := time.Parse("2006-01-02", b.PublicationDate)
				if err != nil {
					return errors.Wrapf(err, "book %q: bad publication_date", b.Title)
				}
				pubDate = &d
			}

			if _, err := pool.Exec(ctx, upsertBookSQL,
				b.Title, b.Author, b.Description, b.Price, b.CoverImage, b.ISBN,
				pubDate, b.Pages, b.Stock, b.Featured, b.Category,
			); err != nil {
				return errors.Wrapf(err, "upsert book %q", b.Title)
			}

			slog.Info("upserted book", slog.String("title", b.Title), slog.String("isbn", b.ISBN))
			return nil
		})
	}
	return g.Wait()
}
