// Package query implements the read pipeline over the item collection:
// filter, sort and paginate, in that order. The pipeline is pure — it
// never mutates the input collection and has no side effects.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Dhreetiman/product-management/internal/model"
)

// Sort directives. Any other value leaves the filtered order unchanged.
const (
	SortHighToLow = "highToLow"
	SortLowToHigh = "lowToHigh"
)

// Pagination defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// ErrBadParam reports a query parameter that failed to parse. Parsing
// fails closed: an unparsable number is rejected rather than silently
// ignored.
var ErrBadParam = errors.New("invalid query parameter")

// Params holds the parsed query parameters for a list request. Nil price
// bounds impose no constraint; empty name/category strings impose no
// constraint.
type Params struct {
	MinPrice *float64
	MaxPrice *float64
	Name     string
	Category string
	Sort     string
	Page     int
	PageSize int
}

// Result is the assembled pipeline output. TotalItems counts the
// filtered collection before pagination, not the returned window.
type Result struct {
	TotalItems int          `json:"totalItems"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Items      []model.Item `json:"items"`
}

// ParseParams extracts pipeline parameters from URL query values.
func ParseParams(values url.Values) (Params, error) {
	p := Params{
		Name:     values.Get("itemName"),
		Category: values.Get("itemCategory"),
		Sort:     values.Get("sort"),
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if v := values.Get("minPrice"); v != "" {
		minPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Params{}, fmt.Errorf("%w: minPrice %q is not a number", ErrBadParam, v)
		}
		p.MinPrice = &minPrice
	}

	if v := values.Get("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Params{}, fmt.Errorf("%w: maxPrice %q is not a number", ErrBadParam, v)
		}
		p.MaxPrice = &maxPrice
	}

	if v := values.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, fmt.Errorf("%w: page %q is not an integer", ErrBadParam, v)
		}
		p.Page = page
	}

	if v := values.Get("pageSize"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, fmt.Errorf("%w: pageSize %q is not an integer", ErrBadParam, v)
		}
		p.PageSize = pageSize
	}

	return p, nil
}

// Apply runs the pipeline stages over a snapshot of the collection and
// assembles the result.
func Apply(items []model.Item, p Params) Result {
	filtered := filter(items, p)
	sortByPrice(filtered, p.Sort)

	return Result{
		TotalItems: len(filtered),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Items:      paginate(filtered, p.Page, p.PageSize),
	}
}

// filter applies the present predicates conjunctively, preserving
// collection order.
func filter(items []model.Item, p Params) []model.Item {
	name := strings.ToLower(p.Name)

	filtered := make([]model.Item, 0, len(items))
	for _, item := range items {
		if p.MinPrice != nil && item.ItemPrice < *p.MinPrice {
			continue
		}
		if p.MaxPrice != nil && item.ItemPrice > *p.MaxPrice {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(item.ItemName), name) {
			continue
		}
		if p.Category != "" && !strings.EqualFold(item.ItemCategory, p.Category) {
			continue
		}
		filtered = append(filtered, item)
	}

	return filtered
}

// sortByPrice orders items by price according to the directive. The sort
// is stable, so equal prices keep their pre-sort order.
func sortByPrice(items []model.Item, directive string) {
	switch directive {
	case SortHighToLow:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ItemPrice > items[j].ItemPrice
		})
	case SortLowToHigh:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ItemPrice < items[j].ItemPrice
		})
	}
}

// paginate returns the half-open window [(page-1)*pageSize, +pageSize)
// over the items. Out-of-range windows yield an empty slice, never an
// error.
func paginate(items []model.Item, page, pageSize int) []model.Item {
	if pageSize <= 0 {
		return []model.Item{}
	}

	start := (page - 1) * pageSize
	if start < 0 || start >= len(items) {
		return []model.Item{}
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}
