package index

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/lang"
)

// captureKinds maps the "<prefix>.name" capture convention to symbol kinds.
var captureKinds = map[string]domain.SymbolKind{
	"function":  domain.KindFunction,
	"method":    domain.KindMethod,
	"class":     domain.KindClass,
	"struct":    domain.KindStruct,
	"interface": domain.KindInterface,
	"enum":      domain.KindEnum,
	"trait":     domain.KindTrait,
	"type":      domain.KindType,
	"const":     domain.KindConstant,
	"var":       domain.KindConstant,
	"mod":       domain.KindModule,
}

// extractFile parses source and returns the definitions and call sites it
// contains. relPath is recorded on every result and drives test detection.
func extractFile(l *lang.Language, relPath string, source []byte) ([]domain.Symbol, []domain.CallSite, error) {
	parser := l.NewParser()
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", relPath, err)
	}
	defer tree.Close()

	symbols, err := extractSymbols(l, tree, relPath, source)
	if err != nil {
		return nil, nil, err
	}
	calls, err := extractCalls(l, tree, relPath, source)
	if err != nil {
		return nil, nil, err
	}
	return symbols, calls, nil
}

func extractSymbols(l *lang.Language, tree *sitter.Tree, relPath string, source []byte) ([]domain.Symbol, error) {
	query, err := l.DefsCompiled()
	if err != nil {
		return nil, err
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var symbols []domain.Symbol
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var name string
		var kind domain.SymbolKind
		var defNode *sitter.Node

		for _, c := range match.Captures {
			capName := query.CaptureNameForId(c.Index)
			prefix, suffix, ok := strings.Cut(capName, ".")
			if !ok {
				continue
			}
			switch suffix {
			case "name":
				if k, ok := captureKinds[prefix]; ok {
					name = lang.NodeText(c.Node, source)
					kind = k
				}
			case "def":
				defNode = c.Node
			}
		}
		if name == "" || defNode == nil {
			continue
		}

		if kind == domain.KindFunction || kind == domain.KindMethod {
			if l.IsTestSymbol != nil && l.IsTestSymbol(name, relPath) {
				kind = domain.KindTest
			}
		}

		symbols = append(symbols, domain.Symbol{
			Name:      name,
			Kind:      kind,
			File:      relPath,
			StartByte: int(defNode.StartByte()),
			EndByte:   int(defNode.EndByte()),
			StartLine: int(defNode.StartPoint().Row) + 1,
			EndLine:   int(defNode.EndPoint().Row) + 2,
			Language:  l.Name,
			Signature: lang.FirstLine(lang.NodeText(defNode, source)),
		})
	}
	return symbols, nil
}

func extractCalls(l *lang.Language, tree *sitter.Tree, relPath string, source []byte) ([]domain.CallSite, error) {
	query, err := l.CallsCompiled()
	if err != nil {
		return nil, err
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	lines := strings.Split(string(source), "\n")

	var calls []domain.CallSite
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		for _, c := range match.Captures {
			if query.CaptureNameForId(c.Index) != "callee" {
				continue
			}
			callee := lang.NodeText(c.Node, source)
			if callee == "" {
				continue
			}
			line := int(c.Node.StartPoint().Row) + 1
			text := ""
			if line-1 < len(lines) {
				text = strings.TrimSpace(lines[line-1])
			}
			calls = append(calls, domain.CallSite{
				Callee: callee,
				File:   relPath,
				Line:   line,
				Text:   text,
			})
		}
	}
	return calls, nil
}

// localVariables returns the variable names bound inside a symbol's span, in
// order of first appearance.
func localVariables(l *lang.Language, source []byte, startByte, endByte int) ([]string, error) {
	query, err := l.VarsCompiled()
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, nil
	}

	parser := l.NewParser()
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	seen := make(map[string]bool)
	var names []string
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)
		for _, c := range match.Captures {
			if query.CaptureNameForId(c.Index) != "var" {
				continue
			}
			if int(c.Node.StartByte()) < startByte || int(c.Node.EndByte()) > endByte {
				continue
			}
			name := lang.NodeText(c.Node, source)
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// scrubbed returns a copy of source with comment and string spans replaced
// by spaces, preserving newlines so line numbers stay aligned. Used by
// scope=code grep.
func scrubbed(l *lang.Language, source []byte) ([]byte, error) {
	query, err := l.ScrubCompiled()
	if err != nil {
		return nil, err
	}
	if query == nil {
		return source, nil
	}

	parser := l.NewParser()
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	out := make([]byte, len(source))
	copy(out, source)
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)
		for _, c := range match.Captures {
			for i := c.Node.StartByte(); i < c.Node.EndByte() && int(i) < len(out); i++ {
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
		}
	}
	return out, nil
}
