package service

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/pkg/cache"
)

// Sort options for the discovery feed
const (
	SortDateDesc  = "date_desc"
	SortDateAsc   = "date_asc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// FilterAll is the sentinel meaning "no restriction" for category and
// condition filters.
const FilterAll = "All"

// maxSuggestions caps the autocomplete result list
const maxSuggestions = 8

// Filter is the user's filter/sort specification for one discovery query.
// MinPrice and MaxPrice are the raw input strings; non-numeric values are
// treated as an absent bound rather than an error.
type Filter struct {
	Text      string
	Category  string
	MinPrice  string
	MaxPrice  string
	Condition string
	Location  string
	Sort      string
}

// DefaultFilter returns the neutral filter: everything, newest first
func DefaultFilter() Filter {
	return Filter{Category: FilterAll, Condition: FilterAll, Sort: SortDateDesc}
}

// Query filters and sorts products for the discovery feed. Sold listings are
// always excluded here; the "my listings" view goes through the catalog
// repository instead. The sort is stable, so equal keys keep input order.
func Query(products []domain.Product, f Filter) []domain.Product {
	minPrice, maxPrice := priceBounds(f)
	text := strings.ToLower(f.Text)
	location := strings.ToLower(f.Location)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Status == domain.StatusSold {
			continue
		}
		if text != "" && !matchesText(p, text) {
			continue
		}
		if f.Category != "" && f.Category != FilterAll && string(p.Category) != f.Category {
			continue
		}
		if p.Price < minPrice || p.Price > maxPrice {
			continue
		}
		if f.Condition != "" && f.Condition != FilterAll && string(p.Condition) != f.Condition {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(p.Location), location) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, f.Sort)
	return out
}

func matchesText(p domain.Product, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Description), lowered) ||
		strings.Contains(strings.ToLower(string(p.Category)), lowered)
}

// priceBounds parses the raw bound strings leniently: empty or non-numeric
// input means the bound is absent (0 / +inf).
func priceBounds(f Filter) (float64, float64) {
	min := 0.0
	if v, err := strconv.ParseFloat(strings.TrimSpace(f.MinPrice), 64); err == nil {
		min = v
	}
	max := math.Inf(1)
	if v, err := strconv.ParseFloat(strings.TrimSpace(f.MaxPrice), 64); err == nil {
		max = v
	}
	return min, max
}

func sortOrDefault(s string) string {
	switch s {
	case SortDateAsc, SortPriceAsc, SortPriceDesc:
		return s
	default:
		return SortDateDesc
	}
}

func sortProducts(products []domain.Product, sortOption string) {
	switch sortOrDefault(sortOption) {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortDateAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt < products[j].CreatedAt })
	default:
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt > products[j].CreatedAt })
	}
}

// Suggester ranks search-box autocomplete entries, caching results briefly
// since the catalog rarely changes between keystrokes.
type Suggester struct {
	catalog domain.CatalogRepository
	cache   *cache.Cache
	ttl     time.Duration
}

// NewSuggester creates a suggester over the catalog. ttl <= 0 disables
// caching.
func NewSuggester(catalog domain.CatalogRepository, c *cache.Cache, ttl time.Duration) *Suggester {
	return &Suggester{catalog: catalog, cache: c, ttl: ttl}
}

// Suggest returns up to 8 distinct titles and category names containing the
// prefix, case-insensitive, with entries that start with the prefix ranked
// before those that merely contain it.
func (s *Suggester) Suggest(prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}

	cacheKey := "suggest:" + strings.ToLower(prefix)
	if s.cache != nil && s.ttl > 0 {
		if v, ok := s.cache.Get(cacheKey); ok {
			return v.([]string), nil
		}
	}

	products, err := s.catalog.List()
	if err != nil {
		return nil, err
	}

	out := Suggestions(products, prefix)
	if s.cache != nil && s.ttl > 0 {
		s.cache.Set(cacheKey, out, s.ttl)
	}
	return out, nil
}

// Suggestions is the pure ranking function behind Suggest. Candidates are
// the categories and titles of the given products, categories first, so a
// category a matching listing belongs to outranks a title at equal prefix
// standing. Categories with no listing are never suggested.
func Suggestions(products []domain.Product, prefix string) []string {
	lowered := strings.ToLower(prefix)

	seen := make(map[string]bool)
	var starts, contains []string
	add := func(candidate string) {
		lc := strings.ToLower(candidate)
		if seen[lc] || !strings.Contains(lc, lowered) {
			return
		}
		seen[lc] = true
		if strings.HasPrefix(lc, lowered) {
			starts = append(starts, candidate)
		} else {
			contains = append(contains, candidate)
		}
	}

	for _, p := range products {
		add(string(p.Category))
	}
	for _, p := range products {
		add(p.Title)
	}

	out := append(starts, contains...)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
