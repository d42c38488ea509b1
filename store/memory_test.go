package store

import (
	"context"
	"testing"

	"github.com/floracart/scraper/models"
)

func TestMemoryStoreCreateAssignsIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Create(ctx, &models.Product{Name: "Rose", Slug: "rose"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.Create(ctx, &models.Product{Name: "Lily", Slug: "lily"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set on create")
	}
}

func TestMemoryStoreLookups(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &models.Product{Name: "Rose", Slug: "rose"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := s.GetByID(ctx, created.ID)
	if err != nil || byID == nil || byID.Name != "Rose" {
		t.Fatalf("GetByID = %+v, %v", byID, err)
	}
	bySlug, err := s.GetBySlug(ctx, "rose")
	if err != nil || bySlug == nil || bySlug.ID != created.ID {
		t.Fatalf("GetBySlug = %+v, %v", bySlug, err)
	}

	missing, err := s.GetByID(ctx, 99)
	if err != nil || missing != nil {
		t.Fatalf("missing id should return nil, nil; got %+v, %v", missing, err)
	}
	missing, err = s.GetBySlug(ctx, "tulip")
	if err != nil || missing != nil {
		t.Fatalf("missing slug should return nil, nil; got %+v, %v", missing, err)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &models.Product{Name: "Rose", Slug: "rose", Image: "https://cdn.example.test/rose.jpg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	local := "/uploads/products/product-1-123.jpg"
	updated, err := s.Update(ctx, created.ID, ProductPatch{Image: &local})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil || updated.Image != local {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.Name != "Rose" {
		t.Fatalf("unpatched field changed: %q", updated.Name)
	}

	none, err := s.Update(ctx, 99, ProductPatch{Image: &local})
	if err != nil || none != nil {
		t.Fatalf("updating missing id should return nil, nil; got %+v, %v", none, err)
	}
}

func TestMemoryCategories(t *testing.T) {
	cats := NewMemoryCategories(
		&models.Category{ID: 1, Name: "Güller", Slug: "guller", IsActive: true},
		&models.Category{ID: 2, Name: "Orkideler", Slug: "orkideler", IsActive: true},
	)
	ctx := context.Background()

	got, err := cats.GetByID(ctx, 2)
	if err != nil || got == nil || got.Name != "Orkideler" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
	missing, err := cats.GetByID(ctx, 9)
	if err != nil || missing != nil {
		t.Fatalf("missing category should return nil, nil; got %+v, %v", missing, err)
	}
}

func TestRecentImports(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Slugs without a suffix hyphen are hand-created products, not imports.
	if _, err := s.Create(ctx, &models.Product{Name: "Rose", Slug: "rose"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, slug := range []string{"red-rose", "red-rose-1", "white-lily"} {
		if _, err := s.Create(ctx, &models.Product{Name: slug, Slug: slug}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	recent, err := RecentImports(ctx, s, 2)
	if err != nil {
		t.Fatalf("recent imports: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d products, want 2", len(recent))
	}
	if recent[0].Slug != "red-rose-1" || recent[1].Slug != "white-lily" {
		t.Fatalf("got %q, %q; want the two newest imports", recent[0].Slug, recent[1].Slug)
	}
}
