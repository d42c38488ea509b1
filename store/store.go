// Package store defines the catalog and file-storage collaborators the
// scraper engine writes through, with an in-memory implementation for tests
// and a SQLite implementation for real catalogs.
package store

import (
	"context"
	"strings"

	"github.com/floracart/scraper/models"
)

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Image *string
	Price *int
	Stock *int
}

// ProductStore is the catalog contract the engine depends on. Lookups
// return nil without error when no row matches.
type ProductStore interface {
	GetAll(ctx context.Context) ([]*models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, id int, patch ProductPatch) (*models.Product, error)
}

// CategoryStore resolves category display names for imported products.
type CategoryStore interface {
	GetAll(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id int) (*models.Category, error)
}

// FileStorage persists a binary payload under a suggested relative path and
// returns the public path the file is retrievable at.
type FileStorage interface {
	Save(ctx context.Context, relPath string, data []byte) (string, error)
}

// RecentImports returns the most recent products whose slug carries a
// uniqueness suffix, newest last. The admin tooling shows these as import
// history.
func RecentImports(ctx context.Context, products ProductStore, limit int) ([]*models.Product, error) {
	all, err := products.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var imported []*models.Product
	for _, p := range all {
		if strings.Contains(p.Slug, "-") {
			imported = append(imported, p)
		}
	}
	if limit > 0 && len(imported) > limit {
		imported = imported[len(imported)-limit:]
	}
	return imported, nil
}
