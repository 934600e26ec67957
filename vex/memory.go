package vex

import (
	"context"
	"fmt"
	"strings"

	"github.com/ortelius/scec-spog/model"
	"github.com/ortelius/scec-spog/util"
)

// MemoryIndex is an immutable in-memory Index over a set of VEX documents.
// Every (document, cve) pair is one match.
type MemoryIndex struct {
	docs     []model.VexDocument
	affected []map[string]struct{} // canonical affected purls per document
}

// NewMemoryIndex indexes docs in the given order
func NewMemoryIndex(docs []model.VexDocument) *MemoryIndex {
	idx := &MemoryIndex{
		docs:     docs,
		affected: make([]map[string]struct{}, len(docs)),
	}
	for i, doc := range docs {
		set := make(map[string]struct{}, len(doc.Affected))
		for _, purl := range doc.Affected {
			set[util.CanonicalPURL(purl)] = struct{}{}
		}
		idx.affected[i] = set
	}
	return idx
}

// Len returns the number of indexed documents
func (m *MemoryIndex) Len() int {
	return len(m.docs)
}

// Search implements Index
func (m *MemoryIndex) Search(ctx context.Context, query string, offset, limit int) ([]model.VulnerabilitySummary, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid window offset=%d limit=%d", offset, limit)
	}
	terms, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}

	var out []model.VulnerabilitySummary
	skipped := 0
	for i := range m.docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !m.matches(i, terms) {
			continue
		}
		doc := &m.docs[i]
		for _, cve := range doc.Cves {
			if skipped < offset {
				skipped++
				continue
			}
			if len(out) >= limit {
				return out, nil
			}
			out = append(out, model.VulnerabilitySummary{
				Advisory: doc.Advisory,
				Cve:      cve,
				Title:    doc.Title,
				Severity: doc.Severity,
			})
		}
	}
	return out, nil
}

func (m *MemoryIndex) matches(i int, terms []Term) bool {
	doc := &m.docs[i]
	for _, t := range terms {
		switch t.Field {
		case FieldAffected:
			if _, ok := m.affected[i][util.CanonicalPURL(t.Value)]; !ok {
				return false
			}
		case FieldCve:
			if !util.Contains(doc.Cves, t.Value) {
				return false
			}
		case FieldAdvisory:
			if doc.Advisory != t.Value {
				return false
			}
		case FieldSeverity:
			if !strings.EqualFold(doc.Severity, t.Value) {
				return false
			}
		default:
			if doc.Advisory != t.Value && !util.Contains(doc.Cves, t.Value) &&
				!strings.Contains(strings.ToLower(doc.Title), strings.ToLower(t.Value)) {
				return false
			}
		}
	}
	return true
}
