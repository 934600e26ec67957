package model

// PackageSummary is the canonical record for one purl. Descriptive fields come
// from the first SBOMEntry seen for the purl.
type PackageSummary struct {
	Purl            string   `json:"purl"`
	Name            string   `json:"name"`
	Sha256          string   `json:"sha256"`
	License         string   `json:"license"`
	Classifier      string   `json:"classifier"`
	Supplier        string   `json:"supplier"`
	Description     string   `json:"description"`
	Dependents      []string `json:"dependents"`
	Vulnerabilities []string `json:"vulnerabilities"`
}

// NewPackageSummary seeds a summary from the first occurrence of a package
func NewPackageSummary(entry SBOMEntry) *PackageSummary {
	return &PackageSummary{
		Purl:            entry.Purl,
		Name:            entry.Name,
		Sha256:          entry.Sha256,
		License:         entry.License,
		Classifier:      entry.Classifier,
		Supplier:        entry.Supplier,
		Description:     entry.Description,
		Dependents:      []string{entry.Dependent},
		Vulnerabilities: []string{},
	}
}
