package service

import "strconv"

// SmartFilter is the structured object the query-parsing collaborator may
// return for a free-text search. Every field is optional; a nil field leaves
// the corresponding current value untouched.
type SmartFilter struct {
	Category *string  `json:"category,omitempty"`
	Location *string  `json:"location,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	SortBy   *string  `json:"sortBy,omitempty"`
}

// SearchState is the user's full search context: the catalog filter plus the
// location selector, which has a wider scope than the filter itself.
type SearchState struct {
	Filter   Filter
	Location string
}

// Merge overlays a smart filter onto the current state. Present fields
// override, absent fields are kept, and the location is applied both to the
// filter and to the wider location selector. Merging the same object twice
// yields the same result as merging it once.
func (s SearchState) Merge(sf *SmartFilter) SearchState {
	if sf == nil {
		return s
	}
	if sf.Category != nil {
		s.Filter.Category = *sf.Category
	}
	if sf.MinPrice != nil {
		s.Filter.MinPrice = formatPrice(*sf.MinPrice)
	}
	if sf.MaxPrice != nil {
		s.Filter.MaxPrice = formatPrice(*sf.MaxPrice)
	}
	if sf.SortBy != nil {
		s.Filter.Sort = *sf.SortBy
	}
	if sf.Location != nil {
		s.Filter.Location = *sf.Location
		s.Location = *sf.Location
	}
	return s
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
