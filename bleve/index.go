// Package bleve implements full-text indexing and scoped search of packs
// on top of Bleve.
package bleve

import (
	"context"
	"os"
	"path/filepath"

	"github.com/514-labs/dbdocs"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
)

// Indexed field names.
const (
	FieldDocID       = "doc_id"
	FieldDB          = "db"
	FieldVersion     = "version"
	FieldTitle       = "title"
	FieldSectionPath = "section_path"
	FieldBody        = "body"
	FieldSourceURL   = "source_url"
)

// batchSize is the number of chunks indexed per Bleve batch.
const batchSize = 500

// document is the indexed form of a chunk.
type document struct {
	DocID       string `json:"doc_id"`
	DB          string `json:"db"`
	Version     string `json:"version"`
	Title       string `json:"title"`
	SectionPath string `json:"section_path"`
	Body        string `json:"body"`
	SourceURL   string `json:"source_url"`
}

var _ dbdocs.Indexer = (*Indexer)(nil)

// Indexer builds on-disk Bleve indexes.
type Indexer struct{}

// NewIndexer creates a new Indexer.
func NewIndexer() *Indexer {
	return &Indexer{}
}

// Build indexes chunks in a staging directory next to dir and renames it
// to dir once the index is closed. Any existing index at dir is replaced.
// On failure the staging directory is removed and dir is left untouched.
func (ix *Indexer) Build(ctx context.Context, dir string, pack *dbdocs.DocPack, chunks []*dbdocs.DocChunk) (err error) {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINDEX, "pack %s: create index parent", pack)
	}

	staging := filepath.Join(parent, filepath.Base(dir)+".tmp-"+uuid.New().String())
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()

	if err := writeIndex(ctx, staging, pack, chunks); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINDEX, "pack %s: replace index", pack)
	}
	if err := os.Rename(staging, dir); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINDEX, "pack %s: commit index", pack)
	}
	return nil
}

// writeIndex creates and fills a closed index at path.
func writeIndex(ctx context.Context, path string, pack *dbdocs.DocPack, chunks []*dbdocs.DocChunk) (err error) {
	idx, err := bleve.New(path, newMapping())
	if err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINDEX, "pack %s: create index", pack)
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil && err == nil {
			err = dbdocs.WrapErrorf(cerr, dbdocs.EINDEX, "pack %s: close index", pack)
		}
	}()

	batch := idx.NewBatch()
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := document{
			DocID:       c.DocID,
			DB:          pack.DB,
			Version:     pack.Version,
			Title:       c.Title,
			SectionPath: c.SectionPath,
			Body:        c.Body,
			SourceURL:   c.SourceURL,
		}
		if err := batch.Index(c.DocID, doc); err != nil {
			return dbdocs.WrapErrorf(err, dbdocs.EINDEX, "pack %s: index %s", pack, c.DocID)
		}
		if batch.Size() >= batchSize {
			if err := idx.Batch(batch); err != nil {
				return dbdocs.WrapErrorf(err, dbdocs.EINDEX, "pack %s: write batch", pack)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			return dbdocs.WrapErrorf(err, dbdocs.EINDEX, "pack %s: write batch", pack)
		}
	}
	return nil
}

// newMapping returns the index mapping: identifiers and scope fields are
// single keyword terms; text fields use the standard analyzer with term
// vectors for phrase queries.
func newMapping() *mapping.IndexMappingImpl {
	keywordField := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewKeywordFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		fm.IncludeInAll = false
		return fm
	}
	textField := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = true
		fm.IncludeTermVectors = true
		return fm
	}

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false
	doc.AddFieldMappingsAt(FieldDocID, keywordField(true))
	doc.AddFieldMappingsAt(FieldSourceURL, keywordField(true))
	doc.AddFieldMappingsAt(FieldDB, keywordField(false))
	doc.AddFieldMappingsAt(FieldVersion, keywordField(false))
	doc.AddFieldMappingsAt(FieldTitle, textField())
	doc.AddFieldMappingsAt(FieldSectionPath, textField())
	doc.AddFieldMappingsAt(FieldBody, textField())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	return m
}
