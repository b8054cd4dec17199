package symbols

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree-sitter parsers are not thread-safe; a pool hands each caller an
// exclusive instance and re-targets its language per use.
var parserPool = sync.Pool{
	New: func() any { return sitter.NewParser() },
}

// Parse parses src with the named grammar. The returned tree holds C
// resources; callers must Close it.
func Parse(ctx context.Context, grammarName string, src []byte) (*sitter.Tree, error) {
	lang, ok := Language(grammarName)
	if !ok {
		return nil, fmt.Errorf("no grammar %q", grammarName)
	}
	p := parserPool.Get().(*sitter.Parser)
	defer parserPool.Put(p)

	p.SetLanguage(lang)
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", grammarName, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s: nil tree", grammarName)
	}
	return tree, nil
}
