package language

import (
	"regexp"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

var (
	gotmplCommentRegex = regexp.MustCompile(`^\{\{-?\s*/\*`)
	gotmplDefineRegex  = regexp.MustCompile(`\{\{-?\s*define\s+"([^"]+)"`)
)

type goTemplateHandler struct {
	separators []*regexp.Regexp
}

func registerGoTemplate(r *Registry) {
	r.Register(&goTemplateHandler{
		separators: compileSeparators(
			`\{\{-?\s*define\b`,
			`\n\n`,
			`\n`,
			`\s`,
		),
	})
}

func (h *goTemplateHandler) LanguageID() string           { return "gotmpl" }
func (h *goTemplateHandler) Extensions() []string         { return []string{"tmpl", "gotmpl"} }
func (h *goTemplateHandler) Aliases() []string            { return []string{"gotemplate"} }
func (h *goTemplateHandler) Separators() []*regexp.Regexp { return h.separators }

// ExtractMetadata matches `{{- define "name" -}}` anywhere near the chunk
// head; templates routinely lead with whitespace trim markers.
func (h *goTemplateHandler) ExtractMetadata(text string) models.ChunkMetadata {
	head := firstLine(stripLeading(text, gotmplCommentRegex))
	if m := gotmplDefineRegex.FindStringSubmatch(head); m != nil {
		return models.ChunkMetadata{
			BlockType:  "define",
			Hierarchy:  "define:" + m[1],
			LanguageID: "gotmpl",
		}
	}
	return models.ChunkMetadata{LanguageID: "gotmpl"}
}
