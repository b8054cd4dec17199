package language

import (
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// composeTopKeys are the reserved compose-file keys.
var composeTopKeys = map[string]bool{
	"version": true, "services": true, "networks": true,
	"volumes": true, "configs": true, "secrets": true,
}

type dockerComposeGrammar struct {
	yamlGrammar
}

func registerDockerCompose(r *Registry) {
	g := &dockerComposeGrammar{
		yamlGrammar: newYamlGrammar(
			"docker_compose", "docker_compose",
			[]string{
				"docker-compose.yml", "docker-compose.yaml", "docker-compose.*.yml", "docker-compose.*.yaml",
				"compose.yml", "compose.yaml",
				"**/docker-compose.yml", "**/docker-compose.yaml", "**/compose.yml", "**/compose.yaml",
			},
			func(content []byte) bool {
				return containsAny(content, "services:")
			},
		),
	}
	r.RegisterGrammar(g)
}

// ExtractMetadata treats two-space keys as service definitions; everything
// else is classified by the YAML fallback.
func (g *dockerComposeGrammar) ExtractMetadata(text string) models.ChunkMetadata {
	line := yamlHeadLine(text)

	if m := yamlJobKeyRegex.FindStringSubmatch(line); m != nil {
		name := strings.Trim(m[1], `"`)
		if !composeTopKeys[name] {
			return models.ChunkMetadata{
				BlockType:  "service",
				Hierarchy:  "service:" + name,
				LanguageID: g.languageID,
			}
		}
	}

	meta := classifyYaml(text)
	meta.LanguageID = g.languageID
	return meta
}
