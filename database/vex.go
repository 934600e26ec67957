package database

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/ortelius/scec-spog/model"
)

// VexStore reads and writes VEX documents in the vex collection.
// It is the vex.Loader used when the index source is ArangoDB.
type VexStore struct {
	Conn DBConnection
}

// Documents returns every VEX document ordered by advisory
func (s VexStore) Documents(ctx context.Context) ([]model.VexDocument, error) {
	query := `
		FOR d IN vex
			SORT d.advisory
			RETURN d
	`

	cursor, err := s.Conn.Database.Query(ctx, query, &arangodb.QueryOptions{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var docs []model.VexDocument
	for cursor.HasMore() {
		var doc model.VexDocument
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// SaveDocuments upserts docs keyed by advisory in a single query
func (s VexStore) SaveDocuments(ctx context.Context, docs []model.VexDocument) error {
	if len(docs) == 0 {
		return nil
	}

	for i := range docs {
		docs[i].Key = ""
		if docs[i].ObjType == "" {
			docs[i].ObjType = model.NewVexDocument().ObjType
		}
	}

	query := `
		FOR doc IN @docs
			UPSERT { advisory: doc.advisory }
			INSERT doc
			UPDATE doc IN vex
	`

	bindVars := map[string]interface{}{
		"docs": docs,
	}

	cursor, err := s.Conn.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return err
	}
	cursor.Close()

	return nil
}

// FindAdvisoriesByPurl returns the advisories listing purl as affected
func (s VexStore) FindAdvisoriesByPurl(ctx context.Context, purl string) ([]string, error) {
	query := `
		FOR d IN vex
			FILTER @purl IN d.affected
			SORT d.advisory
			RETURN d.advisory
	`
	bindVars := map[string]interface{}{
		"purl": purl,
	}

	cursor, err := s.Conn.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var advisories []string
	for cursor.HasMore() {
		var advisory string
		if _, err := cursor.ReadDocument(ctx, &advisory); err != nil {
			return nil, err
		}
		advisories = append(advisories, advisory)
	}
	return advisories, nil
}
