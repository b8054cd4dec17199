package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/dockerfile"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/hcl"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/scala"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// extensionGrammars maps file extensions (doubling as language ids) to
// tree-sitter grammar names.
var extensionGrammars = map[string]string{
	"js": "javascript", "jsx": "javascript", "mjs": "javascript", "cjs": "javascript",
	"ts": "typescript", "mts": "typescript", "cts": "typescript", "tsx": "tsx",
	"go": "go",
	"rs": "rust",
	"py": "python", "python": "python",
	"java": "java",
	"c":   "c", "h": "c",
	"cpp": "cpp", "cxx": "cpp", "cc": "cpp", "hpp": "cpp", "hxx": "cpp", "hh": "cpp",
	"rb":  "ruby",
	"php": "php",
	"tf":  "terraform",
	"hcl": "hcl", "tfvars": "hcl",
	"sh": "bash", "bash": "bash", "zsh": "bash",
	"scala": "scala",
	"css":   "css", "scss": "css",
	"cs":   "csharp",
	"html": "html",
}

// languageIDGrammars routes non-extension language ids (grammar handlers,
// router outputs) to grammars.
var languageIDGrammars = map[string]string{
	"dockerfile":     "dockerfile",
	"yaml":           "yaml",
	"yml":            "yaml",
	"kubernetes":     "yaml",
	"docker_compose": "yaml",
	"github_actions": "yaml",
	"gitlab_ci":      "yaml",
	"helm_values":    "yaml",
	"javascript":     "javascript",
	"typescript":     "typescript",
	"ruby":           "ruby",
	"rust":           "rust",
	"shell":          "bash",
	"terraform":      "terraform",
}

// grammarLanguages holds the process-global grammar handles, initialised
// once and read-only afterwards.
var grammarLanguages = map[string]*sitter.Language{
	"go":         golang.GetLanguage(),
	"javascript": javascript.GetLanguage(),
	"typescript": typescript.GetLanguage(),
	"tsx":        tsx.GetLanguage(),
	"python":     python.GetLanguage(),
	"java":       java.GetLanguage(),
	"c":          c.GetLanguage(),
	"cpp":        cpp.GetLanguage(),
	"ruby":       ruby.GetLanguage(),
	"rust":       rust.GetLanguage(),
	"php":        php.GetLanguage(),
	"bash":       bash.GetLanguage(),
	"scala":      scala.GetLanguage(),
	"css":        css.GetLanguage(),
	"hcl":        hcl.GetLanguage(),
	"terraform":  hcl.GetLanguage(),
	"dockerfile": dockerfile.GetLanguage(),
	"yaml":       yaml.GetLanguage(),
	"csharp":     csharp.GetLanguage(),
	"html":       html.GetLanguage(),
}

// GrammarForLanguage resolves a language id (or extension) to a grammar
// name. ok is false when no grammar covers the language.
func GrammarForLanguage(langID string) (string, bool) {
	if g, ok := extensionGrammars[langID]; ok {
		return g, true
	}
	if g, ok := languageIDGrammars[langID]; ok {
		return g, true
	}
	if _, ok := grammarLanguages[langID]; ok {
		return langID, true
	}
	return "", false
}

// Language returns the tree-sitter language handle for a grammar name.
func Language(grammarName string) (*sitter.Language, bool) {
	l, ok := grammarLanguages[grammarName]
	return l, ok
}

// definitionNodeTypes lists, per grammar, the AST node types that count as
// enclosing definitions for context expansion.
var definitionNodeTypes = map[string]map[string]bool{
	"go": {
		"function_declaration": true, "method_declaration": true, "type_declaration": true,
	},
	"javascript": {
		"function_declaration": true, "method_definition": true, "class_declaration": true,
	},
	"typescript": {
		"function_declaration": true, "method_definition": true,
		"class_declaration": true, "interface_declaration": true,
	},
	"tsx": {
		"function_declaration": true, "method_definition": true,
		"class_declaration": true, "interface_declaration": true,
	},
	"python": {
		"function_definition": true, "class_definition": true,
	},
	"java": {
		"class_declaration": true, "interface_declaration": true,
		"method_declaration": true, "enum_declaration": true,
	},
	"c": {
		"function_definition": true, "struct_specifier": true,
	},
	"cpp": {
		"function_definition": true, "class_specifier": true,
		"struct_specifier": true, "namespace_definition": true,
	},
	"ruby": {
		"method": true, "class": true, "module": true,
	},
	"rust": {
		"function_item": true, "struct_item": true, "enum_item": true,
		"trait_item": true, "impl_item": true,
	},
	"php": {
		"function_definition": true, "method_declaration": true, "class_declaration": true,
	},
	"bash": {
		"function_definition": true,
	},
	"scala": {
		"function_definition": true, "class_definition": true,
		"object_definition": true, "trait_definition": true,
	},
	"css": {
		"rule_set": true,
	},
	"hcl": {
		"block": true,
	},
	"terraform": {
		"block": true,
	},
	"dockerfile": {
		"from_instruction": true,
	},
	"csharp": {
		"method_declaration": true, "class_declaration": true, "interface_declaration": true,
	},
}

// DefinitionNodeTypes returns the definition set for a grammar; nil when
// the grammar has none.
func DefinitionNodeTypes(grammarName string) map[string]bool {
	return definitionNodeTypes[grammarName]
}

// ownerNodeTypes lists, per grammar, the ancestor node types that qualify
// a nested function as a method and contribute the owner name.
var ownerNodeTypes = map[string]map[string]bool{
	"python":     {"class_definition": true},
	"javascript": {"class_declaration": true},
	"typescript": {"class_declaration": true},
	"tsx":        {"class_declaration": true},
	"java":       {"class_declaration": true, "interface_declaration": true, "enum_declaration": true},
	"ruby":       {"class": true, "module": true},
	"rust":       {"impl_item": true, "trait_item": true},
	"php":        {"class_declaration": true, "interface_declaration": true},
	"scala":      {"class_definition": true, "object_definition": true, "trait_definition": true},
	"cpp":        {"class_specifier": true, "struct_specifier": true},
	"csharp":     {"class_declaration": true, "interface_declaration": true},
}
