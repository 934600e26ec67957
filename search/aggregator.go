package search

import (
	"context"
	"errors"
	"net/http"

	"github.com/ortelius/scec-spog/metrics"
	"github.com/ortelius/scec-spog/model"
	"github.com/ortelius/scec-spog/sbom"
	"go.uber.org/zap"
)

// Backend is the SBOM backend as seen by the Aggregator
type Backend interface {
	Search(ctx context.Context, q string, offset, limit int) (*model.SBOMSearchResult, error)
	Fetch(ctx context.Context, id string) (*http.Response, error)
}

// Aggregator runs package searches end to end: backend search, dedup, enrichment
type Aggregator struct {
	backend  Backend
	enricher *Enricher
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewAggregator creates an Aggregator
func NewAggregator(backend Backend, enricher *Enricher, logger *zap.Logger, m *metrics.Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{backend: backend, enricher: enricher, logger: logger, metrics: m}
}

// Search returns the canonical, enriched packages matching q. Backend failures are
// returned as is: a *sbom.StatusError for a non-success status, errors wrapping
// sbom.ErrInvalidURL or sbom.ErrDecode, or the transport error.
func (a *Aggregator) Search(ctx context.Context, q string, offset, limit int) (*model.SearchResult[[]model.PackageSummary], error) {
	a.logger.Debug("Querying SBOM", zap.String("q", q))

	data, err := a.backend.Search(ctx, q, offset, limit)
	if err != nil {
		a.observeFailure("search", err)
		return nil, err
	}
	a.metrics.ObserveUpstream("search", metrics.OutcomeOK)

	packages := Dedup(data.Result)
	values := packages.Values()
	a.enricher.Enrich(ctx, values)

	summaries := make([]model.PackageSummary, 0, len(values))
	for _, pkg := range values {
		summaries = append(summaries, *pkg)
	}
	result := model.NewPackageSearchResult(summaries)

	a.metrics.ObservePackages(len(summaries))
	a.logger.Debug("Search result", zap.Int("total", len(summaries)), zap.Any("result", result.Result))
	return result, nil
}

// Get forwards id to the backend fetch endpoint. Any response, whatever its status,
// is returned for relaying; the caller owns and must close its body.
func (a *Aggregator) Get(ctx context.Context, id string) (*http.Response, error) {
	resp, err := a.backend.Fetch(ctx, id)
	if err != nil {
		a.observeFailure("get", err)
		return nil, err
	}
	a.metrics.ObserveUpstream("get", metrics.OutcomeOK)
	return resp, nil
}

func (a *Aggregator) observeFailure(endpoint string, err error) {
	var statusErr *sbom.StatusError
	switch {
	case errors.As(err, &statusErr):
		a.metrics.ObserveUpstream(endpoint, metrics.OutcomeStatus)
		a.logger.Debug("SBOM backend returned non-success status",
			zap.String("endpoint", endpoint), zap.Int("status", statusErr.StatusCode))
	case errors.Is(err, sbom.ErrInvalidURL):
		a.metrics.ObserveUpstream(endpoint, metrics.OutcomeURL)
		a.logger.Warn("Error constructing SBOM backend URL", zap.String("endpoint", endpoint), zap.Error(err))
	case errors.Is(err, sbom.ErrDecode):
		a.metrics.ObserveUpstream(endpoint, metrics.OutcomeDecode)
		a.logger.Warn("Error deserializing SBOM backend result", zap.String("endpoint", endpoint), zap.Error(err))
	default:
		a.metrics.ObserveUpstream(endpoint, metrics.OutcomeTransport)
		a.logger.Warn("Error calling SBOM backend", zap.String("endpoint", endpoint), zap.Error(err))
	}
}
