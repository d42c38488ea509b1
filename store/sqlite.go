package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/floracart/scraper/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	price       INTEGER NOT NULL,
	image       TEXT    NOT NULL DEFAULT '',
	category    TEXT    NOT NULL DEFAULT '',
	category_id INTEGER NOT NULL DEFAULT 0,
	slug        TEXT    NOT NULL UNIQUE,
	stock       INTEGER NOT NULL DEFAULT 0,
	rating      REAL    NOT NULL DEFAULT 0,
	reviews     INTEGER NOT NULL DEFAULT 0,
	is_active   INTEGER NOT NULL DEFAULT 1,
	featured    INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL,
	slug      TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1
);
`

// SQLiteStore is a SQLite-backed catalog implementing both ProductStore and
// CategoryStore. The UNIQUE constraint on products.slug is the backstop for
// slug collisions between concurrent import runs: the check-then-create
// pattern in the pipeline cannot see another run's uncommitted writes, the
// constraint can.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary initialises) the catalog database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise catalog schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const productColumns = `id, name, description, price, image, category, category_id,
	slug, stock, rating, reviews, is_active, featured, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image,
		&p.Category, &p.CategoryID, &p.Slug, &p.Stock, &p.Rating,
		&p.Reviews, &p.IsActive, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll returns every product ordered by id.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]*models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetByID returns the product with the given id, or nil.
func (s *SQLiteStore) GetByID(ctx context.Context, id int) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}
	return p, nil
}

// GetBySlug returns the product with the given slug, or nil.
func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE slug = ?`, slug)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product %q: %w", slug, err)
	}
	return p, nil
}

// Create inserts the product and returns it with its assigned id.
func (s *SQLiteStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, image, category, category_id,
			slug, stock, rating, reviews, is_active, featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.Image, p.Category, p.CategoryID,
		p.Slug, p.Stock, p.Rating, p.Reviews, p.IsActive, p.Featured, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert product %q: %w", p.Slug, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert product %q: %w", p.Slug, err)
	}

	created := *p
	created.ID = int(id)
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// Update applies the patch and returns the updated product, or nil when the
// id is unknown.
func (s *SQLiteStore) Update(ctx context.Context, id int, patch ProductPatch) (*models.Product, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	if patch.Image != nil {
		current.Image = *patch.Image
	}
	if patch.Price != nil {
		current.Price = *patch.Price
	}
	if patch.Stock != nil {
		current.Stock = *patch.Stock
	}
	current.UpdatedAt = time.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE products SET image = ?, price = ?, stock = ?, updated_at = ? WHERE id = ?`,
		current.Image, current.Price, current.Stock, current.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return current, nil
}

// GetAllCategories returns every category ordered by id.
func (s *SQLiteStore) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, is_active FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// GetCategoryByID returns the category with the given id, or nil.
func (s *SQLiteStore) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, slug, is_active FROM categories WHERE id = ?`, id)
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query category %d: %w", id, err)
	}
	return &c, nil
}

// Categories exposes the store as a CategoryStore.
func (s *SQLiteStore) Categories() CategoryStore {
	return sqliteCategories{s}
}

type sqliteCategories struct {
	store *SQLiteStore
}

func (c sqliteCategories) GetAll(ctx context.Context) ([]*models.Category, error) {
	return c.store.GetAllCategories(ctx)
}

func (c sqliteCategories) GetByID(ctx context.Context, id int) (*models.Category, error) {
	return c.store.GetCategoryByID(ctx, id)
}
