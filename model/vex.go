package model

// VexDocument is a VEX statement as stored in the vex collection and loaded into the index.
// A document may reference several CVEs and several affected packages.
type VexDocument struct {
	Key      string   `json:"_key,omitempty" yaml:"key,omitempty"`
	Advisory string   `json:"advisory" yaml:"advisory"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Severity string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Cves     []string `json:"cves" yaml:"cves"`
	Affected []string `json:"affected" yaml:"affected"` // purls of affected packages
	Fixed    []string `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	ObjType  string   `json:"objtype,omitempty" yaml:"-"`
}

// NewVexDocument creates a new VexDocument with default values
func NewVexDocument() *VexDocument {
	return &VexDocument{
		ObjType: "VexDocument",
	}
}

// VulnerabilitySummary is one match returned by a VEX index query
type VulnerabilitySummary struct {
	Advisory string `json:"advisory"`
	Cve      string `json:"cve"`
	Title    string `json:"title,omitempty"`
	Severity string `json:"severity,omitempty"`
}
