package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// helmValuesKeys is the well-known top-level vocabulary of a Helm
// values.yaml. Three or more hits classify the file; the list is a
// heuristic, not a schema.
var helmValuesKeys = []string{
	"replicaCount:", "image:", "imagePullSecrets:", "nameOverride:",
	"fullnameOverride:", "serviceAccount:", "podAnnotations:",
	"podSecurityContext:", "securityContext:", "service:", "ingress:",
	"resources:", "autoscaling:", "nodeSelector:", "tolerations:", "affinity:",
}

var helmSectionRegex = regexp.MustCompile(`##\s*@section\s+(.+)$`)

type helmValuesGrammar struct {
	yamlGrammar
}

func registerHelmValues(r *Registry) {
	g := &helmValuesGrammar{
		yamlGrammar: newYamlGrammar(
			"helm_values", "helm_values",
			[]string{"values.yml", "values.yaml", "values-*.yaml", "values-*.yml", "**/values.yaml", "**/values.yml", "**/values-*.yaml"},
			func(content []byte) bool {
				hits := 0
				s := string(content)
				for _, key := range helmValuesKeys {
					if strings.Contains(s, key) {
						hits++
						if hits >= 3 {
							return true
						}
					}
				}
				return false
			},
		),
	}
	r.RegisterGrammar(g)
}

// ExtractMetadata prefers bitnami-style `## @section Name` annotations,
// then top-level keys, then the YAML fallback.
func (g *helmValuesGrammar) ExtractMetadata(text string) models.ChunkMetadata {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := helmSectionRegex.FindStringSubmatch(trimmed); m != nil {
			return models.ChunkMetadata{
				BlockType:  "section",
				Hierarchy:  "section:" + strings.TrimSpace(m[1]),
				LanguageID: g.languageID,
			}
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
	}

	line := yamlHeadLine(text)
	if m := yamlTopKeyRegex.FindStringSubmatch(line); m != nil {
		return models.ChunkMetadata{
			BlockType:  "key",
			Hierarchy:  m[1],
			LanguageID: g.languageID,
		}
	}

	meta := classifyYaml(text)
	meta.LanguageID = g.languageID
	return meta
}
