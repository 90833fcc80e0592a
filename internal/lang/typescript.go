package lang

import (
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	Languages["typescript"] = &Language{
		Name:       "typescript",
		Extensions: []string{".ts", ".tsx"},
		lang:       typescript.GetLanguage(),
		DefsQuery: `
(function_declaration name: (identifier) @function.name) @function.def
(class_declaration name: (type_identifier) @class.name) @class.def
(method_definition name: (property_identifier) @method.name) @method.def
(interface_declaration name: (type_identifier) @interface.name) @interface.def
(type_alias_declaration name: (type_identifier) @type.name) @type.def
(lexical_declaration (variable_declarator name: (identifier) @function.name value: (arrow_function))) @function.def
`,
		CallsQuery: `
(call_expression function: (identifier) @callee)
(call_expression function: (member_expression property: (property_identifier) @callee))
`,
		VarsQuery: `
(variable_declarator name: (identifier) @var)
(required_parameter pattern: (identifier) @var)
`,
		ScrubQuery: `
(comment) @skip
(string) @skip
(template_string) @skip
`,
		IsTestSymbol: jsTestSymbol,
	}
}
