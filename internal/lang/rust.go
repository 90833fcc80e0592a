package lang

import (
	"strings"

	"github.com/smacker/go-tree-sitter/rust"
)

func init() {
	Languages["rust"] = &Language{
		Name:       "rust",
		Extensions: []string{".rs"},
		lang:       rust.GetLanguage(),
		DefsQuery: `
(function_item name: (identifier) @function.name) @function.def
(struct_item name: (type_identifier) @struct.name) @struct.def
(enum_item name: (type_identifier) @enum.name) @enum.def
(trait_item name: (type_identifier) @trait.name) @trait.def
(mod_item name: (identifier) @mod.name) @mod.def
(const_item name: (identifier) @const.name) @const.def
`,
		CallsQuery: `
(call_expression function: (identifier) @callee)
(call_expression function: (field_expression field: (field_identifier) @callee))
(call_expression function: (scoped_identifier name: (identifier) @callee))
`,
		VarsQuery: `
(let_declaration pattern: (identifier) @var)
(parameter pattern: (identifier) @var)
`,
		ScrubQuery: `
(line_comment) @skip
(block_comment) @skip
(string_literal) @skip
`,
		IsTestSymbol: func(name, file string) bool {
			return strings.HasPrefix(name, "test_")
		},
	}
}
