// Package models defines data structures shared across the scraper engine.
package models

import "time"

// ScrapedProduct is a product candidate extracted from a listing page.
// Candidates live in memory only; the import pipeline consumes them and
// persists catalog products in their place.
type ScrapedProduct struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image"`
	SourceURL   string  `json:"source_url"`
	Slug        string  `json:"slug,omitempty"`
}

// SelectorProfile is the winning set of field selectors for one page.
type SelectorProfile struct {
	Container string `json:"product_container,omitempty"`
	Name      string `json:"product_name,omitempty"`
	Price     string `json:"product_price,omitempty"`
	Image     string `json:"product_image,omitempty"`
	Link      string `json:"product_link,omitempty"`
}

// Empty reports whether detection produced no usable profile.
func (p SelectorProfile) Empty() bool {
	return p.Container == ""
}

// Pagination describes the best-effort pagination probe result.
type Pagination struct {
	HasPagination    bool   `json:"has_pagination"`
	NextPageSelector string `json:"next_page_selector,omitempty"`
}

// AnalyzeResult is the outcome of a one-shot page analysis.
type AnalyzeResult struct {
	Success       bool              `json:"success"`
	URL           string            `json:"url"`
	RobotsAllowed bool              `json:"robots_txt_allowed"`
	Products      []*ScrapedProduct `json:"products"`
	ProductCount  int               `json:"product_count"`
	Selectors     SelectorProfile   `json:"detected_selectors"`
	Pagination    Pagination        `json:"pagination"`
	Errors        []string          `json:"errors"`
}

// Progress is a snapshot of import pipeline counters. The pipeline passes a
// fresh copy to the progress callback after every processed candidate.
type Progress struct {
	Total          int    `json:"total"`
	Processed      int    `json:"processed"`
	Success        int    `json:"success"`
	Failed         int    `json:"failed"`
	CurrentProduct string `json:"current_product,omitempty"`
}

// ImportOptions controls a catalog import run.
type ImportOptions struct {
	TargetCategoryID   int
	PriceMultiplier    float64
	CurrencyMultiplier float64
	ChunkSize          int
	ChunkDelay         time.Duration
}

// ImportResult summarises a completed import run.
type ImportResult struct {
	Success  int        `json:"success"`
	Failed   int        `json:"failed"`
	Products []*Product `json:"products"`
}

// Product is a catalog entry as owned by the product store.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	CategoryID  int       `json:"category_id"`
	Slug        string    `json:"slug"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"`
	Reviews     int       `json:"reviews"`
	IsActive    bool      `json:"is_active"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category is a catalog category as owned by the category store.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}
