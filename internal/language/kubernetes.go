package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

var k8sKindRegex = regexp.MustCompile(`(?m)^kind:\s*(\S+)`)

type kubernetesGrammar struct {
	yamlGrammar
}

func registerKubernetes(r *Registry) {
	g := &kubernetesGrammar{
		yamlGrammar: newYamlGrammar(
			"kubernetes", "kubernetes",
			[]string{"*.yml", "*.yaml", "**/*.yml", "**/*.yaml"},
			func(content []byte) bool {
				// A manifest needs both apiVersion and kind; any Helm
				// construct hands the file to the Helm template grammar.
				return containsAny(content, "apiVersion:") &&
					containsAny(content, "kind:") &&
					!hasHelmMarker(content)
			},
		),
	}
	r.RegisterGrammar(g)
}

// ExtractMetadata reports the resource kind itself as block_type, e.g.
// kind: Deployment -> ("Deployment", "kind:Deployment").
func (g *kubernetesGrammar) ExtractMetadata(text string) models.ChunkMetadata {
	stripped := stripLeading(text, yamlCommentRegex, "---")
	if m := k8sKindRegex.FindStringSubmatch(stripped); m != nil {
		return models.ChunkMetadata{
			BlockType:  m[1],
			Hierarchy:  "kind:" + m[1],
			LanguageID: g.languageID,
		}
	}

	line := yamlHeadLine(text)
	if strings.HasPrefix(strings.TrimSpace(line), "---") {
		return models.ChunkMetadata{BlockType: "document", Hierarchy: "document", LanguageID: g.languageID}
	}

	meta := classifyYaml(text)
	meta.LanguageID = g.languageID
	return meta
}
