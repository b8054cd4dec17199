package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// gitlabReservedKeys are the top-level keys that are configuration rather
// than jobs.
var gitlabReservedKeys = map[string]bool{
	"stages": true, "include": true, "variables": true, "default": true,
	"workflow": true, "image": true, "services": true, "cache": true,
	"before_script": true, "after_script": true,
}

// gitlabJobKeys are well-known keys inside a job body.
var gitlabJobKeys = map[string]bool{
	"script": true, "stage": true, "image": true, "rules": true,
	"needs": true, "artifacts": true, "extends": true, "only": true,
	"except": true, "when": true, "tags": true, "environment": true,
}

// Job names may carry dots and slashes, e.g. `.build/template`.
var gitlabJobNameRegex = regexp.MustCompile(`^([.\w/][\w./ -]*):`)

type gitlabCIGrammar struct {
	yamlGrammar
}

func registerGitlabCI(r *Registry) {
	g := &gitlabCIGrammar{
		yamlGrammar: newYamlGrammar(
			"gitlab_ci", "gitlab_ci",
			[]string{".gitlab-ci.yml", ".gitlab-ci.yaml", "**/.gitlab-ci.yml", "**/.gitlab-ci.yaml", "*.gitlab-ci.yml", "**/*.gitlab-ci.yml"},
			func(content []byte) bool {
				return containsAny(content, "stages:", "script:", "include:")
			},
		),
	}
	r.RegisterGrammar(g)
}

// ExtractMetadata classifies pipeline chunks. Hidden jobs (leading dot)
// are templates; other top-level non-reserved keys are jobs; job-body keys
// like `script:` report as job-key.
func (g *gitlabCIGrammar) ExtractMetadata(text string) models.ChunkMetadata {
	line := yamlHeadLine(text)

	if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "-") {
		if m := gitlabJobNameRegex.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			switch {
			case strings.HasPrefix(name, "."):
				return models.ChunkMetadata{
					BlockType:  "template",
					Hierarchy:  "template:" + name,
					LanguageID: g.languageID,
				}
			case gitlabReservedKeys[name]:
				return models.ChunkMetadata{
					BlockType:  name,
					Hierarchy:  name,
					LanguageID: g.languageID,
				}
			default:
				return models.ChunkMetadata{
					BlockType:  "job",
					Hierarchy:  "job:" + name,
					LanguageID: g.languageID,
				}
			}
		}
	}

	if m := yamlNestedRegex.FindStringSubmatch(line); m != nil {
		name := strings.Trim(strings.TrimSpace(m[1]), `"`)
		if gitlabJobKeys[name] {
			return models.ChunkMetadata{
				BlockType:  "job-key",
				Hierarchy:  "job-key:" + name,
				LanguageID: g.languageID,
			}
		}
	}

	meta := classifyYaml(text)
	meta.LanguageID = g.languageID
	return meta
}
