// Package vectordb keeps record embeddings for the current run in an
// in-memory chromem-go collection.
package vectordb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/ideaflow/internal/embeddings"
)

const collectionName = "backlog"

// Document is a record to index. Kind is "idea" or "story".
type Document struct {
	ID      string
	Kind    string
	Content string
}

// SearchResult pairs an indexed record with its similarity to a query.
type SearchResult struct {
	ID         string
	Kind       string
	Content    string
	Similarity float32
}

// Index embeds each record once and serves its vector back on demand.
// A record is re-embedded only when its content changes.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
}

// NewIndex creates an empty index backed by embedder.
func NewIndex(embedder embeddings.Embedder) (*Index, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, toChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, collection: col, embedder: embedder}, nil
}

// Name returns the embedding model name.
func (ix *Index) Name() string {
	return ix.embedder.Name()
}

// Upsert embeds all docs that are new or whose content changed, in a
// single batch, and returns how many were embedded.
func (ix *Index) Upsert(ctx context.Context, docs []Document) (int, error) {
	var pending []Document
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		existing, err := ix.collection.GetByID(ctx, d.ID)
		if err == nil && existing.Metadata["content_hash"] == contentHash(d.Content) {
			continue
		}
		pending = append(pending, d)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	texts := make([]string, len(pending))
	for i, d := range pending {
		texts[i] = d.Content
	}
	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d records: %w", len(texts), err)
	}
	if len(vecs) != len(pending) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d records", len(vecs), len(pending))
	}

	for i, d := range pending {
		if len(vecs[i]) == 0 {
			return i, fmt.Errorf("empty embedding for %s", d.ID)
		}
		err := ix.collection.AddDocument(ctx, chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Embedding: vecs[i],
			Metadata: map[string]string{
				"kind":         d.Kind,
				"content_hash": contentHash(d.Content),
			},
		})
		if err != nil {
			return i, fmt.Errorf("index %s: %w", d.ID, err)
		}
	}
	return len(pending), nil
}

// Vector returns the stored embedding for id. chromem-go stores vectors
// normalized to unit length.
func (ix *Index) Vector(ctx context.Context, id string) ([]float32, error) {
	doc, err := ix.collection.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("record %s not indexed: %w", id, err)
	}
	return doc.Embedding, nil
}

// Search returns up to limit records most similar to query. An empty
// kind matches every record.
func (ix *Index) Search(ctx context.Context, query string, limit int, kind string) ([]SearchResult, error) {
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	// Filtering happens after the query since chromem-go requires
	// nResults to fit the unfiltered collection.
	results, err := ix.collection.Query(ctx, query, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]SearchResult, 0, limit)
	for _, r := range results {
		if kind != "" && r.Metadata["kind"] != kind {
			continue
		}
		out = append(out, SearchResult{
			ID:         r.ID,
			Kind:       r.Metadata["kind"],
			Content:    r.Content,
			Similarity: r.Similarity,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of indexed records.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// toChromemFunc adapts an Embedder to chromem-go, which embeds one text at a time.
func toChromemFunc(e embeddings.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		results, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("embedder returned no vector")
		}
		return results[0], nil
	}
}

func contentHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
