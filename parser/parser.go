// Package parser normalizes the raw text and URLs pulled out of listing
// pages: locale-ambiguous price strings, relative asset links, and
// URL-safe product slugs.
package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// currencySymbols is scanned in order; the first symbol found in the input
// wins and stops the scan.
var currencySymbols = []string{"₺", "TL", "$", "€", "£"}

// Price converts a price string into a numeric amount plus the detected
// currency symbol. Thousands and decimal separators are disambiguated by
// position: the last separator is a decimal point when it is followed by one
// or two digits, every earlier separator is a thousands separator and is
// dropped. Unparseable input yields 0 and never an error; callers must treat
// 0 as "no usable price".
func Price(text string) (float64, string) {
	cleaned := strings.TrimSpace(text)

	var currency string
	for _, symbol := range currencySymbols {
		if strings.Contains(cleaned, symbol) {
			currency = symbol
			cleaned = strings.ReplaceAll(cleaned, symbol, "")
			break
		}
	}

	cleaned = resolveSeparators(cleaned)
	cleaned = stripNonNumeric(cleaned)

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0, currency
	}
	return amount, currency
}

// resolveSeparators rewrites '.' and ',' occurrences so that at most one
// decimal point remains. Digits between a separator and the next separator
// (or the end of the digit run) decide its role.
func resolveSeparators(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if r != '.' && r != ',' {
			b.WriteRune(r)
			continue
		}

		trailing := 0
		last := true
		for _, next := range runes[i+1:] {
			if next == '.' || next == ',' {
				last = false
				break
			}
			if next >= '0' && next <= '9' {
				trailing++
			}
		}

		if last && trailing >= 1 && trailing <= 2 {
			b.WriteRune('.')
		}
		// otherwise a thousands separator: dropped
	}
	return b.String()
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveURL converts a possibly relative URL into an absolute one against
// the origin of base. Unresolvable input is returned unchanged so that
// callers stay tolerant of the occasional bad href.
func ResolveURL(raw, base string) string {
	if raw == "" {
		return base
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}

	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	origin := &url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host}
	return origin.ResolveReference(ref).String()
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9ğüşiçö\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe identifier from a product name. The character
// set keeps the Turkish lowercase letters so slugs stay readable for the
// storefront's locale. The result is capped at 100 characters and is not yet
// guaranteed unique against the catalog.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	if runes := []rune(s); len(runes) > 100 {
		s = string(runes[:100])
	}
	return s
}
