package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// Handler adapts one language: extension mapping, chunk separators, and
// per-chunk metadata extraction. Implementations are registered once at
// startup and read-only afterwards.
type Handler interface {
	LanguageID() string
	Extensions() []string
	Aliases() []string
	Separators() []*regexp.Regexp
	ExtractMetadata(text string) models.ChunkMetadata
}

// Grammar is a handler variant that additionally claims files by path glob
// plus a content marker predicate. Used for domain schemas layered over a
// base language, e.g. GitHub Actions over YAML.
type Grammar interface {
	Handler
	GrammarName() string
	BaseLanguage() string
	PathPatterns() []string
	// Matches reports whether the grammar claims the file. content is nil
	// when the caller has not read the file; only path-only-safe grammars
	// may match then.
	Matches(filename string, content []byte) bool
}

// defaultSeparators is the fallback separator ladder for languages without
// a handler: paragraph, line, whitespace.
var defaultSeparators = compileSeparators(`\n\n`, `\n`, `\s`)

// DefaultSeparators returns the generic separator ladder.
func DefaultSeparators() []*regexp.Regexp { return defaultSeparators }

func compileSeparators(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// stripLeading removes comment lines and blank lines from the head of a
// chunk so metadata regexes see the first meaningful line. keep lists
// marker strings (e.g. YAML "---") that must survive stripping.
func stripLeading(text string, comment *regexp.Regexp, keep ...string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		kept := false
		for _, k := range keep {
			if strings.HasPrefix(trimmed, k) {
				kept = true
				break
			}
		}
		if !kept && comment != nil && comment.MatchString(trimmed) {
			continue
		}
		return strings.Join(lines[i:], "\n")
	}
	return ""
}

// firstLine returns the first non-empty line of text, trimmed.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
