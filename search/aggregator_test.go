package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ortelius/scec-spog/metrics"
	"github.com/ortelius/scec-spog/model"
	"github.com/ortelius/scec-spog/sbom"
	"github.com/ortelius/scec-spog/vex"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	result *model.SBOMSearchResult
	err    error
	resp   *http.Response

	q             string
	offset, limit int
	id            string
}

func (f *fakeBackend) Search(_ context.Context, q string, offset, limit int) (*model.SBOMSearchResult, error) {
	f.q, f.offset, f.limit = q, offset, limit
	return f.result, f.err
}

func (f *fakeBackend) Fetch(_ context.Context, id string) (*http.Response, error) {
	f.id = id
	return f.resp, f.err
}

func newTestAggregator(backend Backend, idx vex.Index, m *metrics.Metrics) *Aggregator {
	return NewAggregator(backend, NewEnricher(vex.NewShared(idx), 0, zap.NewNop(), m), zap.NewNop(), m)
}

func TestAggregator_Search(t *testing.T) {
	backend := &fakeBackend{result: &model.SBOMSearchResult{Result: []model.SBOMEntry{
		{Purl: "pkg:npm/a@1", Name: "a", Dependent: "app1"},
		{Purl: "pkg:npm/a@1", Name: "a", Dependent: "app2"},
		{Purl: "pkg:npm/b@1", Name: "b", Dependent: "app1"},
	}}}
	idx := &stubIndex{matches: map[string][]string{"pkg:npm/b@1": {"CVE-2024-1"}}}
	m := metrics.NewMetrics()

	result, err := newTestAggregator(backend, idx, m).Search(context.Background(), "name:a", 10, 20)
	require.NoError(t, err)

	assert.Equal(t, "name:a", backend.q)
	assert.Equal(t, 10, backend.offset)
	assert.Equal(t, 20, backend.limit)

	require.NotNil(t, result.Total)
	assert.Equal(t, 2, *result.Total)
	require.Len(t, result.Result, 2)
	assert.Equal(t, "pkg:npm/a@1", result.Result[0].Purl)
	assert.Equal(t, []string{"app1", "app2"}, result.Result[0].Dependents)
	assert.Empty(t, result.Result[0].Vulnerabilities)
	assert.Equal(t, []string{"CVE-2024-1"}, result.Result[1].Vulnerabilities)

	// each canonical package is enriched exactly once
	assert.Len(t, idx.queries, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("search", metrics.OutcomeOK)))
}

func TestAggregator_SearchEmpty(t *testing.T) {
	backend := &fakeBackend{result: &model.SBOMSearchResult{}}
	result, err := newTestAggregator(backend, nil, nil).Search(context.Background(), "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, *result.Total)
	assert.NotNil(t, result.Result)
	assert.Empty(t, result.Result)
}

func TestAggregator_SearchErrors(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		outcome string
	}{
		{name: "status", err: &sbom.StatusError{StatusCode: http.StatusNotFound}, outcome: metrics.OutcomeStatus},
		{name: "url", err: sbom.ErrInvalidURL, outcome: metrics.OutcomeURL},
		{name: "decode", err: sbom.ErrDecode, outcome: metrics.OutcomeDecode},
		{name: "transport", err: errors.New("connection refused"), outcome: metrics.OutcomeTransport},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx := &stubIndex{}
			m := metrics.NewMetrics()
			result, err := newTestAggregator(&fakeBackend{err: tc.err}, idx, m).Search(context.Background(), "q", 0, 10)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.err)
			assert.Empty(t, idx.queries)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("search", tc.outcome)))
		})
	}
}

func TestAggregator_Get(t *testing.T) {
	backend := &fakeBackend{resp: &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("sbom")),
	}}

	resp, err := newTestAggregator(backend, nil, nil).Get(context.Background(), "ubi9")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "ubi9", backend.id)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "sbom", string(body))
}

func TestAggregator_GetError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	_, err := newTestAggregator(backend, nil, nil).Get(context.Background(), "ubi9")
	assert.Error(t, err)
}
