package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/floracart/scraper/detector"
	"github.com/floracart/scraper/fetch"
	"github.com/floracart/scraper/models"
	"github.com/floracart/scraper/parser"
	"github.com/floracart/scraper/store"
)

// fallbackCategory labels imported products when the target category cannot
// be resolved.
const fallbackCategory = "Diğer"

// Default catalog placeholders for freshly imported products. Stock and
// rating get adjusted by the operator after review.
const (
	defaultStock  = 10
	defaultRating = 4.5
)

// itemResult carries the outcome of one candidate so failures stay values
// instead of crossing the per-item boundary as panics or aborts.
type itemResult struct {
	product *models.Product
	err     error
}

// Import fetches the listing page, extracts every candidate, and creates a
// catalog product per candidate in document order. Individual failures are
// counted and skipped; only the page fetch itself is a hard error. The
// progress callback fires once per candidate. After every ChunkSize items
// the loop sleeps for ChunkDelay as a politeness cooldown.
func (s *Service) Import(ctx context.Context, url string, opts models.ImportOptions, onProgress func(models.Progress)) (*models.ImportResult, error) {
	if opts.PriceMultiplier <= 0 {
		opts.PriceMultiplier = 1
	}
	if opts.CurrencyMultiplier <= 0 {
		opts.CurrencyMultiplier = 1
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = s.cfg.ChunkSize
	}
	if opts.ChunkDelay <= 0 {
		opts.ChunkDelay = s.cfg.ChunkDelay
	}

	categoryName := fallbackCategory
	category, err := s.categories.GetByID(ctx, opts.TargetCategoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve category %d: %w", opts.TargetCategoryID, err)
	}
	if category != nil {
		categoryName = category.Name
	}

	doc, err := s.pages.Document(ctx, url)
	if err != nil {
		s.Metrics.IncFetchError(fetch.ErrorLabel(err))
		return nil, err
	}
	s.Metrics.IncPageFetched()

	_, candidates := detector.Detect(doc, url)
	s.Metrics.AddDetected(len(candidates))

	slog.Info("import started",
		slog.String("url", url),
		slog.Int("candidates", len(candidates)),
		slog.Int("category_id", opts.TargetCategoryID),
	)

	progress := models.Progress{Total: len(candidates)}
	var created []*models.Product

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return importResult(progress, created), err
		}

		progress.CurrentProduct = candidate.Name
		item := s.importOne(ctx, candidate, categoryName, opts)
		if item.err != nil {
			progress.Failed++
			s.Metrics.IncImported("failed")
			slog.Error("product import failed",
				slog.String("name", candidate.Name),
				slog.Any("error", item.err),
			)
		} else {
			progress.Success++
			created = append(created, item.product)
			s.Metrics.IncImported("success")
		}
		progress.Processed++

		if onProgress != nil {
			onProgress(progress)
		}

		if (i+1)%opts.ChunkSize == 0 {
			select {
			case <-ctx.Done():
				return importResult(progress, created), ctx.Err()
			case <-time.After(opts.ChunkDelay):
			}
		}
	}

	slog.Info("import finished",
		slog.String("url", url),
		slog.Int("success", progress.Success),
		slog.Int("failed", progress.Failed),
	)
	return importResult(progress, created), nil
}

func importResult(progress models.Progress, created []*models.Product) *models.ImportResult {
	return &models.ImportResult{
		Success:  progress.Success,
		Failed:   progress.Failed,
		Products: created,
	}
}

// importOne persists a single candidate: unique slug, catalog create, image
// fetch and transcode, catalog update. An image failure leaves the remote
// URL on the product and does not fail the item.
func (s *Service) importOne(ctx context.Context, candidate *models.ScrapedProduct, categoryName string, opts models.ImportOptions) itemResult {
	slug := candidate.Slug
	if slug == "" {
		slug = parser.Slugify(candidate.Name)
	}
	slug, err := s.uniqueSlug(ctx, slug)
	if err != nil {
		return itemResult{err: fmt.Errorf("resolve unique slug: %w", err)}
	}

	description := candidate.Description
	if description == "" {
		description = candidate.Name
	}

	price := int(math.Round(candidate.Price * opts.PriceMultiplier * opts.CurrencyMultiplier))

	product := &models.Product{
		Name:        candidate.Name,
		Description: description,
		Price:       price,
		Image:       candidate.Image,
		Category:    categoryName,
		CategoryID:  opts.TargetCategoryID,
		Slug:        slug,
		Stock:       defaultStock,
		Rating:      defaultRating,
		Reviews:     0,
		IsActive:    true,
		Featured:    false,
	}

	createdProduct, err := s.products.Create(ctx, product)
	if err != nil {
		return itemResult{err: fmt.Errorf("create product: %w", err)}
	}

	imageResult := s.images.FetchAndStore(ctx, candidate.Image, createdProduct.ID)
	if imageResult.Success {
		s.Metrics.IncImage("success")
		localPath := imageResult.LocalPath
		updated, err := s.products.Update(ctx, createdProduct.ID, store.ProductPatch{Image: &localPath})
		if err != nil {
			slog.Warn("image path update failed",
				slog.Int("product_id", createdProduct.ID),
				slog.Any("error", err),
			)
		} else if updated != nil {
			createdProduct = updated
		}
	} else {
		s.Metrics.IncImage("failed")
		slog.Warn("image download failed, keeping remote URL",
			slog.Int("product_id", createdProduct.ID),
			slog.String("url", candidate.Image),
			slog.String("error", imageResult.Err),
		)
	}

	return itemResult{product: createdProduct}
}

// uniqueSlug appends -1, -2, ... until the slug has no catalog collision.
// Within one run processing is sequential, so no intra-run race exists;
// cross-run collisions are caught by the SQLite UNIQUE constraint.
func (s *Service) uniqueSlug(ctx context.Context, slug string) (string, error) {
	unique := slug
	for n := 1; ; n++ {
		existing, err := s.products.GetBySlug(ctx, unique)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return unique, nil
		}
		unique = fmt.Sprintf("%s-%d", slug, n)
	}
}
