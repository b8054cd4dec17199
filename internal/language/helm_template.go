package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

var (
	helmDefineRegex  = regexp.MustCompile(`\{\{-?\s*define\s+"([^"]+)"`)
	helmControlRegex = regexp.MustCompile(`^\{\{-?\s*(if|range|with)\b`)
)

type helmTemplateGrammar struct {
	yamlGrammar
	separators []*regexp.Regexp
}

func registerHelmTemplate(r *Registry) {
	g := &helmTemplateGrammar{
		yamlGrammar: newYamlGrammar(
			"helm_template", "helm_template",
			[]string{
				"templates/*.yaml", "templates/*.yml", "templates/*.tpl",
				"**/templates/*.yaml", "**/templates/*.yml", "**/templates/*.tpl",
			},
			hasHelmMarker,
		),
		separators: compileSeparators(
			`\{\{-?\s*define\b`,
			`\n---`,
			`\n[^\s]`,
			`\n`,
			`\s`,
		),
	}
	r.RegisterGrammar(g)
}

func (g *helmTemplateGrammar) Separators() []*regexp.Regexp { return g.separators }

// Matches also claims files with Helm markers outside a templates/
// directory; the path globs alone would miss inlined library charts.
func (g *helmTemplateGrammar) Matches(filename string, content []byte) bool {
	if g.yamlGrammar.Matches(filename, content) {
		return true
	}
	p := filepathToSlash(filename)
	if content == nil || (!strings.HasSuffix(p, ".yaml") && !strings.HasSuffix(p, ".yml") && !strings.HasSuffix(p, ".tpl")) {
		return false
	}
	return hasHelmMarker(content)
}

// ExtractMetadata is Go-template aware: named defines and control-flow
// blocks classify ahead of the YAML shape.
func (g *helmTemplateGrammar) ExtractMetadata(text string) models.ChunkMetadata {
	line := strings.TrimSpace(yamlHeadLine(text))

	if m := helmDefineRegex.FindStringSubmatch(line); m != nil {
		return models.ChunkMetadata{
			BlockType:  "define",
			Hierarchy:  "define:" + m[1],
			LanguageID: g.languageID,
		}
	}
	if m := helmControlRegex.FindStringSubmatch(line); m != nil {
		return models.ChunkMetadata{
			BlockType:  m[1],
			Hierarchy:  m[1],
			LanguageID: g.languageID,
		}
	}

	stripped := stripLeading(text, yamlCommentRegex, "---")
	if m := k8sKindRegex.FindStringSubmatch(stripped); m != nil {
		return models.ChunkMetadata{
			BlockType:  m[1],
			Hierarchy:  "kind:" + m[1],
			LanguageID: g.languageID,
		}
	}

	meta := classifyYaml(text)
	meta.LanguageID = g.languageID
	return meta
}
