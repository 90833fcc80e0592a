package lang

import (
	"path/filepath"
	"strings"

	"github.com/smacker/go-tree-sitter/javascript"
)

func jsTestSymbol(name, file string) bool {
	base := filepath.Base(file)
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.")
}

func init() {
	Languages["javascript"] = &Language{
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".mjs"},
		lang:       javascript.GetLanguage(),
		DefsQuery: `
(function_declaration name: (identifier) @function.name) @function.def
(class_declaration name: (identifier) @class.name) @class.def
(method_definition name: (property_identifier) @method.name) @method.def
(lexical_declaration (variable_declarator name: (identifier) @function.name value: (arrow_function))) @function.def
`,
		CallsQuery: `
(call_expression function: (identifier) @callee)
(call_expression function: (member_expression property: (property_identifier) @callee))
`,
		VarsQuery: `
(variable_declarator name: (identifier) @var)
(formal_parameters (identifier) @var)
`,
		ScrubQuery: `
(comment) @skip
(string) @skip
(template_string) @skip
`,
		IsTestSymbol: jsTestSymbol,
	}
}
