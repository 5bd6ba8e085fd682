package service

import "context"

// DescriptionGenerator turns free-text feature notes into a sales
// description. Implementations are best-effort: on any failure they return a
// usable generic fallback, never an error, so catalog mutation is never
// blocked.
type DescriptionGenerator interface {
	GenerateDescription(ctx context.Context, title, category, features string) string
}

// QueryParser extracts a structured filter from a free-text search query.
// A nil result means no filter change should be applied.
type QueryParser interface {
	ParseQuery(ctx context.Context, query string) *SmartFilter
}
