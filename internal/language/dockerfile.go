package language

import (
	"regexp"
	"strings"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// Dockerfile instructions are case-sensitive by convention; lowercase
// variants are left unmatched on purpose.
var (
	dockerCommentRegex     = regexp.MustCompile(`^#`)
	dockerInstructionRegex = regexp.MustCompile(
		`^(FROM|RUN|CMD|LABEL|MAINTAINER|EXPOSE|ENV|ADD|COPY|ENTRYPOINT|VOLUME|USER|WORKDIR|ARG|ONBUILD|STOPSIGNAL|HEALTHCHECK|SHELL)\b`)
	dockerFromStageRegex = regexp.MustCompile(`^FROM\s+(\S+)(?:\s+[Aa][Ss]\s+(\S+))?`)
)

type dockerfileHandler struct {
	separators []*regexp.Regexp
}

func registerDockerfile(r *Registry) {
	r.Register(&dockerfileHandler{
		separators: compileSeparators(
			`\nFROM `,
			`\n(?:RUN|CMD|LABEL|MAINTAINER|EXPOSE|ENV|ADD|COPY|ENTRYPOINT|VOLUME|USER|WORKDIR|ARG|ONBUILD|STOPSIGNAL|HEALTHCHECK|SHELL) `,
			`\n\n+`,
			`\n# `,
			`\n`,
			`\s`,
		),
	})
}

func (h *dockerfileHandler) LanguageID() string          { return "dockerfile" }
func (h *dockerfileHandler) Extensions() []string        { return []string{"dockerfile"} }
func (h *dockerfileHandler) Aliases() []string           { return nil }
func (h *dockerfileHandler) Separators() []*regexp.Regexp { return h.separators }

// ExtractMetadata reports the leading instruction as block_type. Hierarchy
// is only derived for FROM lines: `FROM x AS name` -> "stage:name", bare
// `FROM x` -> "image:x". Other instructions keep an empty hierarchy.
func (h *dockerfileHandler) ExtractMetadata(text string) models.ChunkMetadata {
	head := firstLine(stripLeading(text, dockerCommentRegex))
	m := dockerInstructionRegex.FindStringSubmatch(head)
	if m == nil {
		return models.ChunkMetadata{LanguageID: "dockerfile"}
	}
	meta := models.ChunkMetadata{BlockType: m[1], LanguageID: "dockerfile"}
	if m[1] == "FROM" {
		if fm := dockerFromStageRegex.FindStringSubmatch(head); fm != nil {
			if fm[2] != "" {
				meta.Hierarchy = "stage:" + fm[2]
			} else {
				meta.Hierarchy = "image:" + strings.TrimSpace(fm[1])
			}
		}
	}
	return meta
}
