package language

import (
	"regexp"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

var (
	scalaCommentRegex = regexp.MustCompile(`^(//|/\*|\*)`)
	// Modifiers like `case`, `sealed`, `override` carry no hierarchy
	// information and are skipped before the kind keyword.
	scalaDefRegex = regexp.MustCompile(
		`^(?:(?:case|sealed|final|abstract|implicit|lazy|override|private|protected)\s+)*` +
			`(class|trait|object|def|val|var|type)\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// scalaKinds maps the matched keyword to the reported block type.
var scalaKinds = map[string]string{
	"class":  "class",
	"trait":  "trait",
	"object": "object",
	"def":    "function",
	"val":    "val",
	"var":    "var",
	"type":   "type",
}

type scalaHandler struct {
	separators []*regexp.Regexp
}

func registerScala(r *Registry) {
	r.Register(&scalaHandler{
		separators: compileSeparators(
			`\n(?:(?:case|sealed|final|abstract)\s+)*(?:class|trait|object)\s`,
			`\n\s*def\s`,
			`\n\n`,
			`\n`,
			`\s`,
		),
	})
}

func (h *scalaHandler) LanguageID() string           { return "scala" }
func (h *scalaHandler) Extensions() []string         { return []string{"scala", "sc"} }
func (h *scalaHandler) Aliases() []string            { return nil }
func (h *scalaHandler) Separators() []*regexp.Regexp { return h.separators }

func (h *scalaHandler) ExtractMetadata(text string) models.ChunkMetadata {
	head := firstLine(stripLeading(text, scalaCommentRegex))
	m := scalaDefRegex.FindStringSubmatch(head)
	if m == nil {
		return models.ChunkMetadata{LanguageID: "scala"}
	}
	kind := scalaKinds[m[1]]
	return models.ChunkMetadata{
		BlockType:  kind,
		Hierarchy:  kind + ":" + m[2],
		LanguageID: "scala",
	}
}
