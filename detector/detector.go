// Package detector locates the repeating product-card structure on an
// unknown listing page. It probes a ranked list of container selectors and,
// within the first match of each, ranked lists of field selectors; the
// container with the most matching elements that still yields a valid
// name/price/image triple wins. No site-specific configuration is involved.
package detector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/floracart/scraper/models"
	"github.com/floracart/scraper/parser"
)

// Selector guesses are ordered most specific first. Ties on match count keep
// the earlier, more specific selector.
var (
	containerSelectors = []string{
		".product-item",
		".product",
		".product-card",
		".item",
		".product-wrapper",
		`[class*="product"]`,
		"[data-product]",
		"article.product",
	}

	nameSelectors = []string{
		".title",
		".name",
		".product-title",
		".product-name",
		"h2",
		"h3",
		`[class*="title"]`,
		`[class*="name"]`,
	}

	priceSelectors = []string{
		".price",
		".product-price",
		".amount",
		".price-current",
		`[class*="price"]`,
		"[data-price]",
	}

	imageSelectors = []string{
		".image img",
		".product-image img",
		".product-image",
		`img[class*="product"]`,
		`img[class*="image"]`,
		"img",
	}

	linkSelectors = []string{
		"a",
		"[href]",
	}

	// Image source attributes in probe order: plain src first, then the
	// common lazy-load fallbacks.
	imageSourceAttrs = []string{"src", "data-src", "data-lazy", "data-original"}

	paginationSelectors = []string{
		".pagination",
		`[class*="pagination"]`,
		".pager",
		`[class*="pager"]`,
	}
)

// Detect searches the document for the winning selector profile and extracts
// one candidate per matching container element. A page with no repeating
// valid structure yields an empty profile and zero candidates; that is a
// normal outcome, not an error.
func Detect(doc *goquery.Document, baseURL string) (models.SelectorProfile, []*models.ScrapedProduct) {
	nameQuery := strings.Join(nameSelectors, ", ")
	priceQuery := strings.Join(priceSelectors, ", ")
	imageQuery := strings.Join(imageSelectors, ", ")
	linkQuery := strings.Join(linkSelectors, ", ")

	var best models.SelectorProfile
	var bestProducts []*models.ScrapedProduct
	maxCount := 0

	for _, container := range containerSelectors {
		matches := doc.Find(container)
		// A single match is not a listing pattern; require repetition.
		if matches.Length() < 2 {
			continue
		}

		first := matches.First()
		name := strings.TrimSpace(first.Find(nameQuery).First().Text())
		priceText := strings.TrimSpace(first.Find(priceQuery).First().Text())
		price, _ := parser.Price(priceText)
		imageSrc := imageSource(first.Find(imageQuery).First())

		if name == "" || price <= 0 || imageSrc == "" {
			continue
		}

		if matches.Length() > maxCount {
			maxCount = matches.Length()
			best = models.SelectorProfile{
				Container: container,
				Name:      nameQuery,
				Price:     priceQuery,
				Image:     imageQuery,
				Link:      linkQuery,
			}
			bestProducts = extract(doc, best, baseURL)
		}
	}

	return best, bestProducts
}

// extract re-applies the winning profile to every container element. Each
// element passes the same validity gate independently; failures are dropped
// in silence rather than reported.
func extract(doc *goquery.Document, profile models.SelectorProfile, baseURL string) []*models.ScrapedProduct {
	var products []*models.ScrapedProduct

	doc.Find(profile.Container).Each(func(_ int, el *goquery.Selection) {
		name := strings.TrimSpace(el.Find(profile.Name).First().Text())
		priceText := strings.TrimSpace(el.Find(profile.Price).First().Text())
		price, _ := parser.Price(priceText)
		imageSrc := imageSource(el.Find(profile.Image).First())
		link := el.Find(profile.Link).First().AttrOr("href", "")

		if name == "" || price <= 0 || imageSrc == "" {
			return
		}

		products = append(products, &models.ScrapedProduct{
			Name:      name,
			Price:     price,
			Image:     parser.ResolveURL(imageSrc, baseURL),
			SourceURL: parser.ResolveURL(link, baseURL),
			Slug:      parser.Slugify(name),
		})
	})

	return products
}

func imageSource(sel *goquery.Selection) string {
	for _, attr := range imageSourceAttrs {
		if v, ok := sel.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// DetectPagination is a best-effort probe for a pagination container and a
// "next page" link within it. Link text is matched against the site
// language ("sonraki") and English, plus the aria-label fallback.
func DetectPagination(doc *goquery.Document) models.Pagination {
	for _, selector := range paginationSelectors {
		container := doc.Find(selector)
		if container.Length() == 0 {
			continue
		}

		result := models.Pagination{HasPagination: true}
		next := container.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			text := strings.ToLower(a.Text())
			if strings.Contains(text, "sonraki") || strings.Contains(text, "next") {
				return true
			}
			return strings.Contains(strings.ToLower(a.AttrOr("aria-label", "")), "next")
		})
		if next.Length() > 0 {
			result.NextPageSelector = selector + " a"
		}
		return result
	}

	return models.Pagination{}
}
