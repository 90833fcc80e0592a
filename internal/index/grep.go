package index

import (
	"path"
	"regexp"
	"strings"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/lang"
)

// GrepScope selects which spans of a file are searched.
type GrepScope string

const (
	// ScopeAll searches raw file content.
	ScopeAll GrepScope = "all"
	// ScopeCode blanks comments and string literals before matching.
	ScopeCode GrepScope = "code"
)

// GrepOptions configures a project-wide regex search.
type GrepOptions struct {
	Pattern  string
	FileGlob string
	Scope    GrepScope
	Context  int
	Limit    int
}

// GrepResult carries the truncated matches plus the full count.
type GrepResult struct {
	Matches   []domain.GrepMatch `json:"matches"`
	Total     int                `json:"total_count"`
	Truncated bool               `json:"truncated"`
}

// Grep runs a regex over indexed files. The total counts every match even
// past the limit; only the first Limit matches carry text and context.
func (ix *Index) Grep(opts GrepOptions) (GrepResult, error) {
	if opts.Pattern == "" {
		return GrepResult{}, domain.InvalidInputf("grep pattern is empty")
	}
	re, err := regexp.Compile(opts.Pattern)
	if err != nil {
		return GrepResult{}, domain.InvalidInputf("grep pattern %q: %v", opts.Pattern, err)
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	if opts.Scope == "" {
		opts.Scope = ScopeAll
	}

	result := GrepResult{Matches: []domain.GrepMatch{}}
	for _, rel := range ix.Files() {
		if !globMatch(opts.FileGlob, rel) {
			continue
		}
		ix.mu.RLock()
		entry, ok := ix.files[rel]
		ix.mu.RUnlock()
		if !ok {
			continue
		}

		haystack := entry.Content
		if opts.Scope == ScopeCode {
			if l := lang.ForPath(rel); l != nil {
				if cleaned, err := scrubbed(l, entry.Content); err == nil {
					haystack = cleaned
				}
			}
		}

		lines := strings.Split(string(haystack), "\n")
		// Context comes from the raw content even in code scope, so the
		// caller sees the real source around a hit.
		rawLines := strings.Split(string(entry.Content), "\n")
		for i, line := range lines {
			if !re.MatchString(line) {
				continue
			}
			result.Total++
			if len(result.Matches) >= opts.Limit {
				continue
			}
			result.Matches = append(result.Matches, domain.GrepMatch{
				File:    rel,
				Line:    i + 1,
				Text:    rawLine(rawLines, i),
				Context: contextAround(rawLines, i, opts.Context),
			})
		}
	}
	result.Truncated = result.Total > len(result.Matches)
	return result, nil
}

func rawLine(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

// contextAround joins the lines within n of index i, prefixed with 1-based
// line numbers. Empty when n is zero.
func contextAround(lines []string, i, n int) string {
	if n <= 0 {
		return ""
	}
	lo := max(i-n, 0)
	hi := min(i+n, len(lines)-1)
	var b strings.Builder
	for j := lo; j <= hi; j++ {
		if j > lo {
			b.WriteByte('\n')
		}
		b.WriteString(lines[j])
	}
	return b.String()
}

// globMatch matches a glob against the full relative path, then its base
// name, so "*.rs" finds files in subdirectories.
func globMatch(glob, rel string) bool {
	if glob == "" {
		return true
	}
	if ok, err := path.Match(glob, rel); err == nil && ok {
		return true
	}
	ok, err := path.Match(glob, path.Base(rel))
	return err == nil && ok
}
