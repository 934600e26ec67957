// Package vex provides the VEX index queried while enriching package search
// results, and the reader/writer guarded handle that shares it between requests.
package vex

import (
	"context"
	"sync"

	"github.com/ortelius/scec-spog/model"
)

// Index is the query primitive of a VEX index. Search returns the matches for a
// query in index order, skipping offset matches and returning at most limit.
type Index interface {
	Search(ctx context.Context, query string, offset, limit int) ([]model.VulnerabilitySummary, error)
}

// Loader provides the documents an index is rebuilt from
type Loader interface {
	Documents(ctx context.Context) ([]model.VexDocument, error)
}

type emptyIndex struct{}

func (emptyIndex) Search(context.Context, string, int, int) ([]model.VulnerabilitySummary, error) {
	return nil, nil
}

// Shared is the process wide handle to the current Index.
//
// Read holds the read lock for as long as its callback runs. Searches from several
// requests proceed together, but Replace and Rebuild wait until every running
// callback has returned, and new callbacks wait while a rebuild holds the write
// lock. Callbacks must not call Replace or Rebuild.
type Shared struct {
	mu    sync.RWMutex
	index Index
	docs  int
}

// NewShared wraps idx. A nil idx answers every query with no matches.
func NewShared(idx Index) *Shared {
	if idx == nil {
		idx = emptyIndex{}
	}
	return &Shared{index: idx}
}

// Read runs fn with the current index under the read lock
func (s *Shared) Read(fn func(Index)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.index)
}

// Replace swaps in idx under the write lock
func (s *Shared) Replace(idx Index) {
	if idx == nil {
		idx = emptyIndex{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
}

// Rebuild loads documents from loader and builds a new MemoryIndex from them under
// the write lock. Loading happens before the lock is taken; on a load error the
// current index is kept. It returns the number of documents indexed.
func (s *Shared) Rebuild(ctx context.Context, loader Loader) (int, error) {
	docs, err := loader.Documents(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = NewMemoryIndex(docs)
	s.docs = len(docs)
	return s.docs, nil
}

// Documents reports the document count of the last rebuild
func (s *Shared) Documents() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs
}
