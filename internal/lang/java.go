package lang

import (
	"path/filepath"
	"strings"

	"github.com/smacker/go-tree-sitter/java"
)

func init() {
	Languages["java"] = &Language{
		Name:       "java",
		Extensions: []string{".java"},
		lang:       java.GetLanguage(),
		DefsQuery: `
(class_declaration name: (identifier) @class.name) @class.def
(interface_declaration name: (identifier) @interface.name) @interface.def
(enum_declaration name: (identifier) @enum.name) @enum.def
(method_declaration name: (identifier) @method.name) @method.def
`,
		CallsQuery: `
(method_invocation name: (identifier) @callee)
`,
		VarsQuery: `
(local_variable_declaration declarator: (variable_declarator name: (identifier) @var))
(formal_parameter name: (identifier) @var)
`,
		ScrubQuery: `
(comment) @skip
(string_literal) @skip
`,
		IsTestSymbol: func(name, file string) bool {
			base := filepath.Base(file)
			return strings.HasSuffix(base, "Test.java") || strings.HasPrefix(name, "test")
		},
	}
}
