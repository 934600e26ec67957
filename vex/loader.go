package vex

import (
	"context"
	"fmt"
	"os"

	"github.com/ortelius/scec-spog/model"
	"gopkg.in/yaml.v2"
)

// FileLoader reads VEX documents from a YAML or JSON file. The file holds either a
// list of documents or a mapping with a "documents" list.
type FileLoader struct {
	Path string
}

// Documents implements Loader
func (f FileLoader) Documents(_ context.Context) ([]model.VexDocument, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read VEX file: %w", err)
	}
	return ParseDocuments(content)
}

// ParseDocuments decodes VEX documents from YAML or JSON content
func ParseDocuments(content []byte) ([]model.VexDocument, error) {
	var docs []model.VexDocument
	if err := yaml.Unmarshal(content, &docs); err == nil {
		return docs, nil
	}

	var wrapped struct {
		Documents []model.VexDocument `yaml:"documents"`
	}
	if err := yaml.Unmarshal(content, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse VEX documents: %w", err)
	}
	return wrapped.Documents, nil
}

// StaticLoader serves a fixed set of documents
type StaticLoader []model.VexDocument

// Documents implements Loader
func (s StaticLoader) Documents(_ context.Context) ([]model.VexDocument, error) {
	return s, nil
}
