package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// searchDoc is what gets indexed per symbol. Names are lowercased so term
// and prefix matching is case-insensitive.
type searchDoc struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// SearchIndex ranks symbol names with a tiered disjunction: exact matches
// first, then prefixes, then substrings, then fuzzy hits. Documents are
// keyed by the symbol table's primary key.
type SearchIndex struct {
	idx bleve.Index
}

// NewSearchIndex creates an empty in-memory search index.
func NewSearchIndex() (*SearchIndex, error) {
	field := bleve.NewTextFieldMapping()
	field.Analyzer = keyword.Name
	field.Store = false
	field.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", field)
	doc.AddFieldMappingsAt("kind", field)

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping = doc

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &SearchIndex{idx: idx}, nil
}

// Close releases the underlying index.
func (s *SearchIndex) Close() error { return s.idx.Close() }

// Update applies one file's reindex delta in a single batch.
func (s *SearchIndex) Update(table *SymbolTable, removed, added []string) error {
	if len(removed) == 0 && len(added) == 0 {
		return nil
	}
	batch := s.idx.NewBatch()
	for _, key := range removed {
		batch.Delete(key)
	}
	for _, key := range added {
		sym, ok := table.GetByKey(key)
		if !ok {
			continue
		}
		doc := searchDoc{
			Name: strings.ToLower(sym.Name),
			Kind: string(sym.Kind),
		}
		if err := batch.Index(key, doc); err != nil {
			return err
		}
	}
	return s.idx.Batch(batch)
}

// Result is one ranked search hit.
type Result struct {
	Symbol domain.Symbol `json:"symbol"`
	Score  float64       `json:"score"`
}

// Search returns up to limit symbols matching q, best first, plus the total
// number of matches before truncation. An empty kind matches all kinds.
func (s *SearchIndex) Search(table *SymbolTable, q string, kind domain.SymbolKind, limit int) ([]Result, int, error) {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return nil, 0, domain.InvalidInputf("search query is empty")
	}
	if limit <= 0 {
		limit = 5
	}

	term := query.NewTermQuery(needle)
	term.SetField("name")
	term.SetBoost(10)

	prefix := query.NewPrefixQuery(needle)
	prefix.SetField("name")
	prefix.SetBoost(5)

	wildcard := query.NewWildcardQuery("*" + escapeWildcard(needle) + "*")
	wildcard.SetField("name")
	wildcard.SetBoost(2)

	fuzzy := query.NewFuzzyQuery(needle)
	fuzzy.SetField("name")
	fuzzy.SetBoost(1)

	var full query.Query = query.NewDisjunctionQuery([]query.Query{term, prefix, wildcard, fuzzy})
	if kind != "" {
		kq := query.NewTermQuery(string(kind))
		kq.SetField("kind")
		full = query.NewConjunctionQuery([]query.Query{full, kq})
	}

	req := bleve.NewSearchRequest(full)
	req.Size = limit
	res, err := s.idx.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search %q: %w", q, err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		sym, ok := table.GetByKey(hit.ID)
		if !ok {
			continue
		}
		results = append(results, Result{Symbol: sym, Score: hit.Score})
	}
	// Stable tie-breaking: shorter names beat longer ones at equal score,
	// then lexicographic.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ni, nj := results[i].Symbol.Name, results[j].Symbol.Name
		if len(ni) != len(nj) {
			return len(ni) < len(nj)
		}
		return ni < nj
	})
	return results, int(res.Total), nil
}

// escapeWildcard quotes the bleve wildcard metacharacters in a literal
// needle.
func escapeWildcard(s string) string {
	r := strings.NewReplacer("*", `\*`, "?", `\?`)
	return r.Replace(s)
}
