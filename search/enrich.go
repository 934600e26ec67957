package search

import (
	"context"
	"time"

	"github.com/ortelius/scec-spog/metrics"
	"github.com/ortelius/scec-spog/model"
	"github.com/ortelius/scec-spog/util"
	"github.com/ortelius/scec-spog/vex"
	"go.uber.org/zap"
)

// DefaultVexLimit is the result window of one enrichment query
const DefaultVexLimit = 1000

// Enricher attaches vulnerability ids from the VEX index to package summaries
type Enricher struct {
	index   *vex.Shared
	limit   int
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewEnricher creates an Enricher over index. A non-positive limit uses DefaultVexLimit.
func NewEnricher(index *vex.Shared, limit int, logger *zap.Logger, m *metrics.Metrics) *Enricher {
	if limit <= 0 {
		limit = DefaultVexLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{index: index, limit: limit, logger: logger, metrics: m}
}

// Enrich runs one affected-purl query per package and appends the matched CVE ids,
// skipping ids the package already has. The index read lock is held for the whole
// batch. A failed query is logged and leaves that package without vulnerabilities.
func (e *Enricher) Enrich(ctx context.Context, packages []*model.PackageSummary) {
	e.index.Read(func(idx vex.Index) {
		for _, pkg := range packages {
			e.enrichOne(ctx, idx, pkg)
		}
	})
}

func (e *Enricher) enrichOne(ctx context.Context, idx vex.Index, pkg *model.PackageSummary) {
	start := time.Now()
	matches, err := idx.Search(ctx, vex.AffectedQuery(pkg.Purl), 0, e.limit)
	e.metrics.ObserveVexQuery(time.Since(start))
	if err != nil {
		e.metrics.IncEnrichmentFailure()
		e.logger.Warn("Error searching VEX index", zap.String("purl", pkg.Purl), zap.Error(err))
		return
	}

	for _, match := range matches {
		if match.Cve == "" {
			continue
		}
		pkg.Vulnerabilities = util.AppendUnique(pkg.Vulnerabilities, match.Cve)
	}

	e.logger.Info("Found vulns related to package",
		zap.Int("count", len(pkg.Vulnerabilities)),
		zap.String("purl", pkg.Purl))
}
