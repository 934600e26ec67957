package model

// SearchResult is the response envelope for gateway searches
type SearchResult[T any] struct {
	Total  *int `json:"total,omitempty"`
	Result T    `json:"result"`
}

// NewPackageSearchResult wraps packages in an envelope whose total is the package count
func NewPackageSearchResult(packages []PackageSummary) *SearchResult[[]PackageSummary] {
	total := len(packages)
	return &SearchResult[[]PackageSummary]{
		Total:  &total,
		Result: packages,
	}
}
