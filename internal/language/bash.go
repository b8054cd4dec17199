package language

import (
	"regexp"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// Three function syntaxes: `name()`, `function name`, `function name()`.
var (
	bashCommentRegex = regexp.MustCompile(`^#`)
	bashFuncRegexes  = []*regexp.Regexp{
		regexp.MustCompile(`^function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(\)`),
		regexp.MustCompile(`^function\s+([A-Za-z_][A-Za-z0-9_]*)`),
		regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\(\)`),
	}
)

type bashHandler struct {
	separators []*regexp.Regexp
}

func registerBash(r *Registry) {
	r.Register(&bashHandler{
		separators: compileSeparators(
			`\n(?:function\s+[A-Za-z_][A-Za-z0-9_]*|[A-Za-z_][A-Za-z0-9_]*\s*\(\))`,
			`\n\n`,
			`\n`,
			`\s`,
		),
	})
}

func (h *bashHandler) LanguageID() string           { return "bash" }
func (h *bashHandler) Extensions() []string         { return []string{"sh", "bash", "zsh"} }
func (h *bashHandler) Aliases() []string            { return []string{"sh", "zsh", "shell"} }
func (h *bashHandler) Separators() []*regexp.Regexp { return h.separators }

func (h *bashHandler) ExtractMetadata(text string) models.ChunkMetadata {
	head := firstLine(stripLeading(text, bashCommentRegex))
	for _, re := range bashFuncRegexes {
		if m := re.FindStringSubmatch(head); m != nil {
			return models.ChunkMetadata{
				BlockType:  "function",
				Hierarchy:  "function:" + m[1],
				LanguageID: "bash",
			}
		}
	}
	return models.ChunkMetadata{LanguageID: "bash"}
}
