package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// hclBlockKeywords are the block types recognised at the top of an HCL
// chunk.
var hclBlockKeywords = []string{
	"resource", "data", "module", "variable", "output", "provider",
	"terraform", "locals", "backend", "provisioner", "dynamic", "moved",
}

var (
	hclCommentRegex = regexp.MustCompile(`^(#|//|/\*)`)
	hclBlockRegex   = regexp.MustCompile(
		`^(` + strings.Join(hclBlockKeywords, "|") + `)\b(?:\s+"([^"]+)")?(?:\s+"([^"]+)")?`)
)

type hclHandler struct {
	separators []*regexp.Regexp
}

func registerHCL(r *Registry) {
	r.Register(&hclHandler{
		separators: compileSeparators(
			`\n(?:resource|data|module|variable|output|provider|terraform|locals)\b`,
			`\n\n`,
			`\n`,
			`\s`,
		),
	})
}

func (h *hclHandler) LanguageID() string  { return "hcl" }
func (h *hclHandler) Extensions() []string {
	return []string{"tf", "hcl", "tfvars"}
}
func (h *hclHandler) Aliases() []string            { return []string{"tf", "tfvars"} }
func (h *hclHandler) Separators() []*regexp.Regexp { return h.separators }

// ExtractMetadata reads the leading block header, e.g.
// `resource "aws_s3_bucket" "data" {` -> ("resource",
// "resource.aws_s3_bucket.data", "hcl"). Up to two quoted labels join the
// keyword with dots.
func (h *hclHandler) ExtractMetadata(text string) models.ChunkMetadata {
	head := firstLine(stripLeading(text, hclCommentRegex))
	m := hclBlockRegex.FindStringSubmatch(head)
	if m == nil {
		return models.ChunkMetadata{LanguageID: "hcl"}
	}
	hierarchy := m[1]
	if m[2] != "" {
		hierarchy += "." + m[2]
	}
	if m[3] != "" {
		hierarchy += "." + m[3]
	}
	return models.ChunkMetadata{
		BlockType:  m[1],
		Hierarchy:  hierarchy,
		LanguageID: "hcl",
	}
}
