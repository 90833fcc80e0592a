package lang

import (
	"strings"

	"github.com/smacker/go-tree-sitter/golang"
)

func init() {
	Languages["go"] = &Language{
		Name:       "go",
		Extensions: []string{".go"},
		lang:       golang.GetLanguage(),
		DefsQuery: `
(function_declaration name: (identifier) @function.name) @function.def
(method_declaration name: (field_identifier) @method.name) @method.def
(type_declaration (type_spec name: (type_identifier) @type.name)) @type.def
(source_file (const_declaration (const_spec name: (identifier) @const.name) @const.def))
(source_file (var_declaration (var_spec name: (identifier) @var.name) @var.def))
`,
		CallsQuery: `
(call_expression function: (identifier) @callee)
(call_expression function: (selector_expression field: (field_identifier) @callee))
`,
		VarsQuery: `
(short_var_declaration left: (expression_list (identifier) @var))
(var_spec name: (identifier) @var)
(parameter_declaration name: (identifier) @var)
(range_clause left: (expression_list (identifier) @var))
`,
		ScrubQuery: `
(comment) @skip
(interpreted_string_literal) @skip
(raw_string_literal) @skip
`,
		IsTestSymbol: func(name, file string) bool {
			return strings.HasSuffix(file, "_test.go") && strings.HasPrefix(name, "Test")
		},
	}
}
