package symbols

import (
	"embed"
	"os"
	"path/filepath"
)

//go:embed queries/*.scm
var builtinQueries embed.FS

// ResolveQuery loads the tree-sitter query for a grammar. User overrides
// win over the bundled queries: ${project}/.cocosearch/queries/{g}.scm,
// then ~/.cocosearch/queries/{g}.scm, then the built-in file. ok is false
// when no query exists anywhere.
func ResolveQuery(projectRoot, grammarName string) ([]byte, bool) {
	rel := filepath.Join(".cocosearch", "queries", grammarName+".scm")

	if projectRoot != "" {
		if b, err := os.ReadFile(filepath.Join(projectRoot, rel)); err == nil {
			return b, true
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if b, err := os.ReadFile(filepath.Join(home, rel)); err == nil {
			return b, true
		}
	}
	if b, err := builtinQueries.ReadFile("queries/" + grammarName + ".scm"); err == nil {
		return b, true
	}
	return nil, false
}
