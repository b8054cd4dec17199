package language

import (
	"path"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

var (
	yamlCommentRegex = regexp.MustCompile(`^#`)
	yamlTopKeyRegex  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_./-]*):`)
	yamlJobKeyRegex  = regexp.MustCompile(`^  ([A-Za-z_."][A-Za-z0-9_./" -]*?):`)
	yamlNestedRegex  = regexp.MustCompile(`^\s{2,}([A-Za-z_."][A-Za-z0-9_./" -]*?):`)
	// list items only classify when they carry a key: "- name: web"
	yamlListItemRegex = regexp.MustCompile(`^\s*-\s+([A-Za-z_][A-Za-z0-9_-]*):`)
)

// yamlSeparators is the shared separator ladder for YAML-shaped files:
// document marker, top-level key, second-level key, line, whitespace.
var yamlSeparators = compileSeparators(
	`\n---`,
	`\n[^\s]`,
	`\n  [^\s]`,
	`\n`,
	`\s`,
)

// yamlGrammar carries the glob + content-marker plumbing shared by all
// YAML-based grammars.
type yamlGrammar struct {
	grammarName string
	languageID  string
	patterns    []string
	globs       []glob.Glob
	// marker decides whether the content belongs to this grammar. nil
	// means path-only-safe: the grammar may match without content.
	marker func(content []byte) bool
}

func newYamlGrammar(grammarName, languageID string, patterns []string, marker func([]byte) bool) yamlGrammar {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, glob.MustCompile(p, '/'))
	}
	return yamlGrammar{
		grammarName: grammarName,
		languageID:  languageID,
		patterns:    patterns,
		globs:       globs,
		marker:      marker,
	}
}

func (g *yamlGrammar) GrammarName() string           { return g.grammarName }
func (g *yamlGrammar) LanguageID() string            { return g.languageID }
func (g *yamlGrammar) BaseLanguage() string          { return "yaml" }
func (g *yamlGrammar) PathPatterns() []string        { return g.patterns }
func (g *yamlGrammar) Extensions() []string          { return nil }
func (g *yamlGrammar) Aliases() []string             { return nil }
func (g *yamlGrammar) Separators() []*regexp.Regexp  { return yamlSeparators }

func (g *yamlGrammar) Matches(filename string, content []byte) bool {
	p := filepathToSlash(filename)
	matched := false
	for _, gl := range g.globs {
		if gl.Match(p) || gl.Match(path.Base(p)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if g.marker == nil {
		return true
	}
	if content == nil {
		return false
	}
	return g.marker(content)
}

// yamlHeadLine returns the first meaningful line of a YAML chunk with its
// indentation intact; metadata classification depends on indent depth.
func yamlHeadLine(text string) string {
	stripped := stripLeading(text, yamlCommentRegex, "---")
	if stripped == "" {
		return ""
	}
	line, _, _ := strings.Cut(stripped, "\n")
	return line
}

// classifyYaml is the shared fallback classification for YAML chunks:
// top-level keys, keyed list items, nested keys, document markers, and
// value continuations. All but top-level keys prefix the hierarchy with
// the block type.
func classifyYaml(text string) models.ChunkMetadata {
	line := yamlHeadLine(text)
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return models.ChunkMetadata{}
	case strings.HasPrefix(trimmed, "---"):
		return models.ChunkMetadata{BlockType: "document", Hierarchy: "document"}
	}
	if m := yamlTopKeyRegex.FindStringSubmatch(line); m != nil {
		return models.ChunkMetadata{BlockType: m[1], Hierarchy: m[1]}
	}
	if m := yamlListItemRegex.FindStringSubmatch(line); m != nil {
		return models.ChunkMetadata{BlockType: "list-item", Hierarchy: "list-item:" + m[1]}
	}
	if m := yamlNestedRegex.FindStringSubmatch(line); m != nil {
		key := strings.Trim(m[1], `"`)
		return models.ChunkMetadata{BlockType: "nested-key", Hierarchy: "nested-key:" + key}
	}
	return models.ChunkMetadata{BlockType: "value", Hierarchy: "value"}
}

// containsAny reports whether content contains one of the markers.
func containsAny(content []byte, markers ...string) bool {
	s := string(content)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// helmMarkers are the template constructs that identify a Helm template.
// Their presence excludes plain-Kubernetes detection on the same file.
var helmMarkers = []string{
	"{{ .Values", "{{ .Release", "{{ .Chart",
	"{{ include", "{{ define", "{{ template",
}

func hasHelmMarker(content []byte) bool {
	return containsAny(content, helmMarkers...)
}
