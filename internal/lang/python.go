package lang

import (
	"path/filepath"
	"strings"

	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	Languages["python"] = &Language{
		Name:       "python",
		Extensions: []string{".py"},
		lang:       python.GetLanguage(),
		DefsQuery: `
(function_definition name: (identifier) @function.name) @function.def
(class_definition name: (identifier) @class.name) @class.def
`,
		CallsQuery: `
(call function: (identifier) @callee)
(call function: (attribute attribute: (identifier) @callee))
`,
		VarsQuery: `
(assignment left: (identifier) @var)
(parameters (identifier) @var)
(for_statement left: (identifier) @var)
`,
		ScrubQuery: `
(comment) @skip
(string) @skip
`,
		IsTestSymbol: func(name, file string) bool {
			base := filepath.Base(file)
			inTestFile := strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")
			return strings.HasPrefix(name, "test_") || (inTestFile && strings.HasPrefix(name, "Test"))
		},
	}
}
