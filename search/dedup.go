// Package search aggregates SBOM backend results into canonical packages and
// enriches them with vulnerabilities from the VEX index.
package search

import (
	"github.com/ortelius/scec-spog/model"
	"github.com/ortelius/scec-spog/util"
)

// Packages maps purl to its canonical summary and remembers first-seen order
type Packages struct {
	byPurl map[string]*model.PackageSummary
	order  []string
}

// Dedup collapses backend rows into one summary per purl. The first row seen for a
// purl supplies the descriptive fields; later rows only add their dependent, once.
func Dedup(entries []model.SBOMEntry) *Packages {
	p := &Packages{byPurl: make(map[string]*model.PackageSummary)}
	for _, entry := range entries {
		if summary, ok := p.byPurl[entry.Purl]; ok {
			// linear scan, dependents per package stay small
			summary.Dependents = util.AppendUnique(summary.Dependents, entry.Dependent)
			continue
		}
		p.byPurl[entry.Purl] = model.NewPackageSummary(entry)
		p.order = append(p.order, entry.Purl)
	}
	return p
}

// Len returns the number of distinct purls
func (p *Packages) Len() int {
	return len(p.order)
}

// Get returns the summary for purl
func (p *Packages) Get(purl string) (*model.PackageSummary, bool) {
	s, ok := p.byPurl[purl]
	return s, ok
}

// Values returns the summaries in first-seen order
func (p *Packages) Values() []*model.PackageSummary {
	out := make([]*model.PackageSummary, 0, len(p.order))
	for _, purl := range p.order {
		out = append(out, p.byPurl[purl])
	}
	return out
}
