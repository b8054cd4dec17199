package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

var (
	actionsStepNameRegex = regexp.MustCompile(`(?m)^\s*(?:- )?name:\s*(.+)$`)
	actionsStepUsesRegex = regexp.MustCompile(`(?m)^\s*(?:- )?uses:\s*(.+)$`)
)

// actionsTopKeys are the reserved workflow-level keys; a two-space key
// outside this set is treated as a job.
var actionsTopKeys = map[string]bool{
	"name": true, "on": true, "env": true, "jobs": true,
	"permissions": true, "concurrency": true, "defaults": true, "run-name": true,
}

type githubActionsGrammar struct {
	yamlGrammar
}

func registerGithubActions(r *Registry) {
	g := &githubActionsGrammar{
		yamlGrammar: newYamlGrammar(
			"github_actions", "github_actions",
			[]string{".github/workflows/*.yml", ".github/workflows/*.yaml", "**/.github/workflows/*.yml", "**/.github/workflows/*.yaml"},
			func(content []byte) bool {
				return containsAny(content, "jobs:") && containsAny(content, "on:", "\"on\":", "'on':")
			},
		),
	}
	r.RegisterGrammar(g)
}

// ExtractMetadata classifies workflow chunks: list items that carry a
// `name:` or `uses:` are steps; two-space keys outside the reserved
// workflow keys are jobs; the rest falls through to plain YAML shape.
func (g *githubActionsGrammar) ExtractMetadata(text string) models.ChunkMetadata {
	line := yamlHeadLine(text)
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "- ") {
		meta := models.ChunkMetadata{BlockType: "step", LanguageID: g.languageID}
		if m := actionsStepNameRegex.FindStringSubmatch(text); m != nil {
			meta.Hierarchy = "step:" + strings.Trim(strings.TrimSpace(m[1]), `"'`)
		} else if m := actionsStepUsesRegex.FindStringSubmatch(text); m != nil {
			meta.Hierarchy = "step:" + strings.TrimSpace(m[1])
		}
		return meta
	}

	if m := yamlJobKeyRegex.FindStringSubmatch(line); m != nil {
		name := strings.Trim(m[1], `"`)
		if !actionsTopKeys[name] {
			return models.ChunkMetadata{
				BlockType:  "job",
				Hierarchy:  "job:" + name,
				LanguageID: g.languageID,
			}
		}
	}

	meta := classifyYaml(text)
	meta.LanguageID = g.languageID
	return meta
}
