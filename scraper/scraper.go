// Package scraper orchestrates the extraction pipeline: policy check, page
// fetch, structure detection, and the throttled catalog import loop.
package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/floracart/scraper/config"
	"github.com/floracart/scraper/detector"
	"github.com/floracart/scraper/fetch"
	"github.com/floracart/scraper/images"
	"github.com/floracart/scraper/models"
	"github.com/floracart/scraper/robots"
	"github.com/floracart/scraper/store"
)

// Service is the extraction engine. It is invoked in-process by the
// administrative tooling; Analyze never writes to the catalog, Import does.
type Service struct {
	cfg        *config.Config
	pages      *fetch.Client
	robots     *robots.Checker
	images     *images.Processor
	products   store.ProductStore
	categories store.CategoryStore
	Metrics    *Metrics
}

// Deps bundles the collaborators a Service is built from.
type Deps struct {
	Pages      *fetch.Client
	Robots     *robots.Checker
	Images     *images.Processor
	Products   store.ProductStore
	Categories store.CategoryStore
	Metrics    *Metrics
}

// NewService wires the engine together. Metrics may be nil.
func NewService(cfg *config.Config, deps Deps) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if deps.Pages == nil {
		return nil, fmt.Errorf("page fetch client is required")
	}
	if deps.Robots == nil {
		return nil, fmt.Errorf("robots checker is required")
	}
	if deps.Images == nil {
		return nil, fmt.Errorf("image processor is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product store is required")
	}
	if deps.Categories == nil {
		return nil, fmt.Errorf("category store is required")
	}
	return &Service{
		cfg:        cfg,
		pages:      deps.Pages,
		robots:     deps.Robots,
		images:     deps.Images,
		products:   deps.Products,
		categories: deps.Categories,
		Metrics:    deps.Metrics,
	}, nil
}

// Analyze fetches one listing page and reports what an import would find:
// up to PreviewLimit candidates, the true total count, the winning selector
// profile, and pagination hints. All failure modes are absorbed into the
// report; a crawl restriction is surfaced as a warning, not a block.
func (s *Service) Analyze(ctx context.Context, url string) *models.AnalyzeResult {
	result := &models.AnalyzeResult{URL: url, RobotsAllowed: true}

	verdict := s.robots.Check(ctx, url)
	result.RobotsAllowed = verdict.Allowed
	if !verdict.Allowed {
		result.Errors = append(result.Errors, verdict.Message)
		slog.Warn("crawl policy restriction detected",
			slog.String("url", url),
			slog.String("message", verdict.Message),
		)
	}

	doc, err := s.pages.Document(ctx, url)
	if err != nil {
		s.Metrics.IncFetchError(fetch.ErrorLabel(err))
		result.Errors = append(result.Errors, fmt.Sprintf("site unreachable: %v", err))
		return result
	}
	s.Metrics.IncPageFetched()

	profile, candidates := detector.Detect(doc, url)
	result.Selectors = profile
	result.Pagination = detector.DetectPagination(doc)
	result.ProductCount = len(candidates)
	s.Metrics.AddDetected(len(candidates))

	if len(candidates) == 0 {
		result.Errors = append(result.Errors, "no products found: page structure could not be detected")
		return result
	}

	result.Success = true
	preview := candidates
	if len(preview) > s.cfg.PreviewLimit {
		preview = preview[:s.cfg.PreviewLimit]
	}
	result.Products = preview

	slog.Info("page analyzed",
		slog.String("url", url),
		slog.Int("products", result.ProductCount),
		slog.String("container", profile.Container),
		slog.Bool("robots_allowed", result.RobotsAllowed),
	)
	return result
}
