package bleve

import (
	"context"
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/514-labs/dbdocs"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SnippetRunes is the length of result snippets before truncation.
const SnippetRunes = 200

// Field boosts for relevance scoring.
const (
	TitleBoost       = 2.0
	SectionPathBoost = 1.5
	BodyBoost        = 1.0
)

// maxFacetTerms bounds the number of distinct values reported per facet.
const maxFacetTerms = 100

var _ dbdocs.Searcher = (*Searcher)(nil)

// Searcher runs read-only queries against committed indexes. Each call
// opens and closes the index, so concurrent searches do not share state.
type Searcher struct{}

// NewSearcher creates a new Searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

// Search parses q.Text with the query-string syntax, scores it against
// title, section path and body, and restricts hits to q.DB and q.Version.
// Clauses without a field are matched in all three fields with their
// boosts; "+term", "-term", "field:term" and quoted phrases keep their
// meaning. Documents containing the whole text as a phrase rank higher.
// A blank query returns no results.
func (s *Searcher) Search(ctx context.Context, indexDir string, q dbdocs.SearchQuery) ([]dbdocs.SearchResult, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, nil
	}
	parsed, err := bleve.NewQueryStringQuery(text).Parse()
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EQUERY, "invalid query %q", q.Text)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = dbdocs.DefaultSearchLimit
	}

	idx, err := openReadOnly(indexDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = idx.Close() }()

	req := bleve.NewSearchRequestOptions(scopedQuery(q.DB, q.Version, text, spread(parsed)), limit, 0, false)
	req.Fields = []string{FieldDocID, FieldTitle, FieldSectionPath, FieldBody, FieldSourceURL}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINDEX, "search %s", indexDir)
	}

	results := make([]dbdocs.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docID := field(hit.Fields, FieldDocID)
		if docID == "" {
			docID = hit.ID
		}
		results = append(results, dbdocs.SearchResult{
			DocID:     docID,
			Title:     field(hit.Fields, FieldTitle),
			Section:   field(hit.Fields, FieldSectionPath),
			Score:     hit.Score,
			Snippet:   Snippet(field(hit.Fields, FieldBody)),
			SourceURL: field(hit.Fields, FieldSourceURL),
		})
	}
	return results, nil
}

// scoredFields are the text fields a clause without a field is matched in.
var scoredFields = []struct {
	name  string
	boost float64
}{
	{FieldTitle, TitleBoost},
	{FieldSectionPath, SectionPathBoost},
	{FieldBody, BodyBoost},
}

// fieldAliases map user-facing field names to indexed ones.
var fieldAliases = map[string]string{
	"section": FieldSectionPath,
}

// scopedQuery requires the parsed query together with exact db and version
// filters. Phrase matches of the raw text only add to the score.
func scopedQuery(db, version, text string, parsed query.Query) query.Query {
	dbq := bleve.NewTermQuery(db)
	dbq.SetField(FieldDB)
	vq := bleve.NewTermQuery(version)
	vq.SetField(FieldVersion)

	var phrases []query.Query
	for _, f := range scoredFields {
		pq := bleve.NewMatchPhraseQuery(text)
		pq.SetField(f.name)
		pq.SetBoost(f.boost)
		phrases = append(phrases, pq)
	}

	return query.NewBooleanQuery([]query.Query{dbq, vq, parsed}, phrases, nil)
}

// spread rewrites a parsed query-string query in place. Leaf clauses
// without a field become a disjunction over scoredFields; clauses naming a
// field alias are pointed at the indexed field.
func spread(q query.Query) query.Query {
	switch q := q.(type) {
	case *query.BooleanQuery:
		if q.Must != nil {
			q.Must = spread(q.Must)
		}
		if q.Should != nil {
			q.Should = spread(q.Should)
		}
		if q.MustNot != nil {
			q.MustNot = spread(q.MustNot)
		}
	case *query.ConjunctionQuery:
		for i, c := range q.Conjuncts {
			q.Conjuncts[i] = spread(c)
		}
	case *query.DisjunctionQuery:
		for i, d := range q.Disjuncts {
			q.Disjuncts[i] = spread(d)
		}
	case *query.MatchQuery:
		if q.Field() != "" {
			q.SetField(resolveField(q.Field()))
			return q
		}
		return acrossFields(q.Boost(), func(name string, boost float64) query.Query {
			c := *q
			c.SetField(name)
			c.SetBoost(boost)
			return &c
		})
	case *query.MatchPhraseQuery:
		if q.Field() != "" {
			q.SetField(resolveField(q.Field()))
			return q
		}
		return acrossFields(q.Boost(), func(name string, boost float64) query.Query {
			c := *q
			c.SetField(name)
			c.SetBoost(boost)
			return &c
		})
	case *query.WildcardQuery:
		if q.Field() != "" {
			q.SetField(resolveField(q.Field()))
			return q
		}
		return acrossFields(q.Boost(), func(name string, boost float64) query.Query {
			c := query.NewWildcardQuery(q.Wildcard)
			c.SetField(name)
			c.SetBoost(boost)
			return c
		})
	case *query.RegexpQuery:
		if q.Field() != "" {
			q.SetField(resolveField(q.Field()))
			return q
		}
		return acrossFields(q.Boost(), func(name string, boost float64) query.Query {
			c := query.NewRegexpQuery(q.Regexp)
			c.SetField(name)
			c.SetBoost(boost)
			return c
		})
	}
	return q
}

// acrossFields ORs one clause per scored field, scaling each field boost
// by the clause's own boost.
func acrossFields(boost float64, clause func(name string, boost float64) query.Query) query.Query {
	clauses := make([]query.Query, 0, len(scoredFields))
	for _, f := range scoredFields {
		clauses = append(clauses, clause(f.name, f.boost*boost))
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

func resolveField(name string) string {
	if alias, ok := fieldAliases[name]; ok {
		return alias
	}
	return name
}

// Snippet returns the first SnippetRunes characters of body, followed by
// "..." when body is longer.
func Snippet(body string) string {
	if utf8.RuneCountInString(body) <= SnippetRunes {
		return body
	}
	n := 0
	for i := range body {
		if n == SnippetRunes {
			return body[:i] + "..."
		}
		n++
	}
	return body
}

// Facets summarizes the content of one index.
type Facets struct {
	Total    uint64
	DBs      map[string]int
	Versions map[string]int
}

// Facets counts indexed chunks per db and version.
func (s *Searcher) Facets(ctx context.Context, indexDir string) (*Facets, error) {
	idx, err := openReadOnly(indexDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = idx.Close() }()

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	req.AddFacet(FieldDB, bleve.NewFacetRequest(FieldDB, maxFacetTerms))
	req.AddFacet(FieldVersion, bleve.NewFacetRequest(FieldVersion, maxFacetTerms))

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINDEX, "facets %s", indexDir)
	}

	f := &Facets{
		Total:    res.Total,
		DBs:      map[string]int{},
		Versions: map[string]int{},
	}
	for name, counts := range map[string]map[string]int{FieldDB: f.DBs, FieldVersion: f.Versions} {
		fr, ok := res.Facets[name]
		if !ok || fr.Terms == nil {
			continue
		}
		for _, t := range fr.Terms.Terms() {
			counts[t.Term] = t.Count
		}
	}
	return f, nil
}

// openReadOnly opens a committed index. A missing or unreadable index is
// reported as EINDEX.
func openReadOnly(indexDir string) (bleve.Index, error) {
	if _, err := os.Stat(indexDir); err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINDEX, "index %s unavailable", indexDir)
	}
	idx, err := bleve.OpenUsing(indexDir, map[string]interface{}{"read_only": true})
	if err != nil {
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return nil, dbdocs.Errorf(dbdocs.EINDEX, "index %s does not exist", indexDir)
		}
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINDEX, "open index %s", indexDir)
	}
	return idx, nil
}

func field(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
