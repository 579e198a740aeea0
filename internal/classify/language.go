package classify

import (
	"strings"

	"github.com/typetrace/typetrace/internal/astdiff"
)

// Language is a tracked project's primary language.
type Language string

const (
	LanguagePython     Language = "Python"
	LanguageTypeScript Language = "TypeScript"
)

// Supported reports whether commits in this language can be classified.
func (l Language) Supported() bool {
	_, ok := grammars[l]
	return ok
}

var grammars = map[Language]astdiff.Grammar{
	LanguagePython:     {Backend: "python-treesitter", Suffix: ".py"},
	LanguageTypeScript: {Backend: "typescript-treesitter", Suffix: ".ts"},
}

// GrammarFor returns the diff-tool grammar backend for a language.
func GrammarFor(lang Language) (astdiff.Grammar, bool) {
	g, ok := grammars[lang]
	return g, ok
}

var fileSuffixes = map[Language][]string{
	LanguagePython:     {".py", ".pyi"},
	LanguageTypeScript: {".ts"},
}

// FileRelevant reports whether a changed file belongs to the project's
// target language.
func FileRelevant(name string, lang Language) bool {
	lower := strings.ToLower(name)
	for _, suffix := range fileSuffixes[lang] {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Table is a versioned set of grammar node labels considered type-relevant
// for one language. Labels match by case-insensitive prefix, the way the
// diff tool prints node descriptors.
type Table struct {
	Version string
	Labels  []string
}

// Relevant reports whether a node label denotes type-annotation syntax.
func (t Table) Relevant(label string) bool {
	lower := strings.ToLower(label)
	for _, l := range t.Labels {
		if strings.HasPrefix(lower, l) {
			return true
		}
	}
	return false
}

// DefaultTables returns the built-in type-relevance tables per language.
func DefaultTables() map[Language]Table {
	return map[Language]Table{
		LanguagePython: {
			Version: "2024-06",
			Labels:  []string{"typed_parameter", "type_annotation", "type", "union_type"},
		},
		LanguageTypeScript: {
			Version: "2024-06",
			Labels:  []string{"type_annotation", "type_arguments", "type_parameter", "union_type", "generic_type", "predefined_type"},
		},
	}
}
