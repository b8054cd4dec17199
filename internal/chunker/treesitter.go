package chunker

import (
	"context"
	"sort"
	"time"

	"github.com/VioletCranberry/cocosearch/internal/symbols"
)

// astBoundaries parses text with the language's tree-sitter grammar and
// returns top-level AST node starts as split boundaries. A nil return
// means the language has no grammar or parsing failed; the caller falls
// back to the regex ladder.
func astBoundaries(text, langID string) []int {
	grammarName, ok := symbols.GrammarForLanguage(langID)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tree, err := symbols.Parse(ctx, grammarName, []byte(text))
	if err != nil {
		return nil
	}
	defer tree.Close()

	bounds := symbols.TopLevelBoundaries(tree.RootNode(), len(text))
	sort.Ints(bounds)
	return dedupeInts(bounds)
}
