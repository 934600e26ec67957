package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ortelius/scec-spog/metrics"
	"github.com/ortelius/scec-spog/model"
	"github.com/ortelius/scec-spog/vex"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubIndex answers affected queries from a fixed table and fails for selected purls
type stubIndex struct {
	mu      sync.Mutex
	matches map[string][]string
	fail    map[string]bool
	queries []string
	windows [][2]int
}

func (s *stubIndex) Search(_ context.Context, query string, offset, limit int) ([]model.VulnerabilitySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	s.windows = append(s.windows, [2]int{offset, limit})

	terms, err := vex.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	purl := terms[0].Value
	if s.fail[purl] {
		return nil, errors.New("index unavailable")
	}
	var out []model.VulnerabilitySummary
	for _, cve := range s.matches[purl] {
		out = append(out, model.VulnerabilitySummary{Cve: cve})
	}
	return out, nil
}

func newPackages(purls ...string) []*model.PackageSummary {
	var out []*model.PackageSummary
	for _, p := range purls {
		out = append(out, model.NewPackageSummary(model.SBOMEntry{Purl: p, Dependent: "app"}))
	}
	return out
}

func TestEnricher_Enrich(t *testing.T) {
	idx := &stubIndex{matches: map[string][]string{
		"pkg:npm/a@1": {"CVE-2024-1", "CVE-2024-2"},
	}}
	e := NewEnricher(vex.NewShared(idx), 0, zap.NewNop(), nil)

	packages := newPackages("pkg:npm/a@1", "pkg:npm/b@1")
	e.Enrich(context.Background(), packages)

	assert.Equal(t, []string{"CVE-2024-1", "CVE-2024-2"}, packages[0].Vulnerabilities)
	assert.Empty(t, packages[1].Vulnerabilities)
	assert.Equal(t, []string{`affected:"pkg:npm/a@1"`, `affected:"pkg:npm/b@1"`}, idx.queries)
	assert.Equal(t, [][2]int{{0, DefaultVexLimit}, {0, DefaultVexLimit}}, idx.windows)
}

func TestEnricher_DuplicateMatchesAreCollapsed(t *testing.T) {
	idx := &stubIndex{matches: map[string][]string{
		"pkg:npm/a@1": {"CVE-2024-1", "CVE-2024-1", "", "CVE-2024-3"},
	}}
	e := NewEnricher(vex.NewShared(idx), 0, zap.NewNop(), nil)

	packages := newPackages("pkg:npm/a@1")
	e.Enrich(context.Background(), packages)

	assert.Equal(t, []string{"CVE-2024-1", "CVE-2024-3"}, packages[0].Vulnerabilities)
}

func TestEnricher_FailureIsIsolated(t *testing.T) {
	idx := &stubIndex{
		matches: map[string][]string{
			"pkg:npm/a@1": {"CVE-2024-1"},
			"pkg:npm/b@1": {"CVE-2024-2"},
			"pkg:npm/c@1": {"CVE-2024-3"},
		},
		fail: map[string]bool{"pkg:npm/b@1": true},
	}
	m := metrics.NewMetrics()
	e := NewEnricher(vex.NewShared(idx), 0, zap.NewNop(), m)

	packages := newPackages("pkg:npm/a@1", "pkg:npm/b@1", "pkg:npm/c@1")
	e.Enrich(context.Background(), packages)

	assert.Equal(t, []string{"CVE-2024-1"}, packages[0].Vulnerabilities)
	assert.Empty(t, packages[1].Vulnerabilities)
	assert.Equal(t, []string{"CVE-2024-3"}, packages[2].Vulnerabilities)
	assert.Len(t, idx.queries, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentFailures))
}

func TestEnricher_CustomLimit(t *testing.T) {
	idx := &stubIndex{}
	e := NewEnricher(vex.NewShared(idx), 25, nil, nil)
	e.Enrich(context.Background(), newPackages("pkg:npm/a@1"))
	require.Len(t, idx.windows, 1)
	assert.Equal(t, [2]int{0, 25}, idx.windows[0])
}

func TestEnricher_MemoryIndex(t *testing.T) {
	shared := vex.NewShared(nil)
	_, err := shared.Rebuild(context.Background(), vex.StaticLoader{
		{Advisory: "A-1", Cves: []string{"CVE-2024-1"}, Affected: []string{"pkg:npm/a@1"}},
		{Advisory: "A-2", Cves: []string{"CVE-2024-1"}, Affected: []string{"pkg:npm/a@1", "pkg:npm/b@1"}},
	})
	require.NoError(t, err)

	e := NewEnricher(shared, 0, zap.NewNop(), nil)
	packages := newPackages("pkg:npm/a@1", "pkg:npm/b@1")
	e.Enrich(context.Background(), packages)

	// the index returns CVE-2024-1 twice for a, it is kept once
	assert.Equal(t, []string{"CVE-2024-1"}, packages[0].Vulnerabilities)
	assert.Equal(t, []string{"CVE-2024-1"}, packages[1].Vulnerabilities)
}
