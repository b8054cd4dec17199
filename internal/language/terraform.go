package language

import (
	"path"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// terraformGrammar claims *.tf files by path alone, so Terraform modules
// are detected even when the caller has not read the file contents.
type terraformGrammar struct {
	hcl      Handler
	patterns []string
	globs    []glob.Glob
}

func registerTerraform(r *Registry) {
	hcl, _ := r.HandlerFor("hcl")
	patterns := []string{"*.tf", "**/*.tf"}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, glob.MustCompile(p, '/'))
	}
	r.RegisterGrammar(&terraformGrammar{hcl: hcl, patterns: patterns, globs: globs})
}

func (g *terraformGrammar) GrammarName() string    { return "terraform" }
func (g *terraformGrammar) LanguageID() string     { return "terraform" }
func (g *terraformGrammar) BaseLanguage() string   { return "hcl" }
func (g *terraformGrammar) PathPatterns() []string { return g.patterns }
func (g *terraformGrammar) Extensions() []string   { return nil }
func (g *terraformGrammar) Aliases() []string      { return nil }

func (g *terraformGrammar) Separators() []*regexp.Regexp { return g.hcl.Separators() }

func (g *terraformGrammar) Matches(filename string, content []byte) bool {
	p := filepathToSlash(filename)
	if !strings.HasSuffix(p, ".tf") {
		return false
	}
	for _, gl := range g.globs {
		if gl.Match(p) || gl.Match(path.Base(p)) {
			return true
		}
	}
	return false
}

func (g *terraformGrammar) ExtractMetadata(text string) models.ChunkMetadata {
	return g.hcl.ExtractMetadata(text)
}
