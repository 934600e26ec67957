// Package model defines the data structures exchanged by the spog gateway,
// including SBOM backend rows, canonical package summaries and VEX documents.
package model

// SBOMEntry is one row returned by the SBOM backend search, describing a package
// as it occurs in a single dependent artifact. Several entries share a purl when the
// package is used by more than one dependent.
type SBOMEntry struct {
	Purl        string `json:"purl"`
	Name        string `json:"name"`
	Sha256      string `json:"sha256"`
	License     string `json:"license"`
	Classifier  string `json:"classifier"`
	Supplier    string `json:"supplier"`
	Description string `json:"description"`
	Dependent   string `json:"dependent"`
}

// SBOMSearchResult is the body of GET /api/v1/sbom/search on the SBOM backend
type SBOMSearchResult struct {
	Total  *int        `json:"total,omitempty"`
	Result []SBOMEntry `json:"result"`
}
