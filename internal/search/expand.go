package search

import (
	"context"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/VioletCranberry/cocosearch/internal/symbols"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

const (
	// expandLineBudget caps how many lines an expanded hit may span.
	expandLineBudget = 50
	// fallbackWindow is the plain before/after context when expansion
	// cannot run.
	fallbackWindow = 5
	// maxLineChars truncates pathological lines in rendered content.
	maxLineChars = 500
	// fileCacheSize bounds the parsed-file LRU.
	fileCacheSize = 128
)

type parsedFile struct {
	content []byte
	// lineStarts[i] is the byte offset where line i (0-based) begins.
	lineStarts []int
	tree       *sitter.Tree
	grammar    string
}

// Expander widens a hit to its enclosing function or class using the
// file's AST, with a plain window fallback. Parsed files are LRU-cached
// by absolute path.
type Expander struct {
	files *lru.Cache[string, *parsedFile]
}

// NewExpander builds an expander with the default cache size.
func NewExpander() (*Expander, error) {
	files, err := lru.NewWithEvict[string, *parsedFile](fileCacheSize, func(_ string, f *parsedFile) {
		if f.tree != nil {
			f.tree.Close()
		}
	})
	if err != nil {
		return nil, err
	}
	return &Expander{files: files}, nil
}

// Expand fills the result's line range and content for the chunk at loc
// inside absPath. On any failure the chunk's own content is kept and a
// plain window rendered where possible.
func (e *Expander) Expand(ctx context.Context, absPath, langID string, r *models.SearchResult) {
	f := e.load(ctx, absPath, langID)
	if f == nil {
		return
	}

	startLine := lineAt(f.lineStarts, r.Location.StartByte)
	endLine := lineAt(f.lineStarts, clampByte(r.Location.EndByte-1, len(f.content)))
	r.StartLine = startLine + 1
	r.EndLine = endLine + 1

	if f.tree != nil {
		if node := enclosingDefinition(f, r.Location); node != nil {
			ns := lineAt(f.lineStarts, int(node.StartByte()))
			ne := lineAt(f.lineStarts, clampByte(int(node.EndByte())-1, len(f.content)))
			if ne-ns+1 > expandLineBudget {
				// keep the hit centred and trim both ends evenly
				ns, ne = centerWindow(startLine, endLine, ns, ne, expandLineBudget)
			}
			r.StartLine = ns + 1
			r.EndLine = ne + 1
			r.Content = renderLines(f, ns, ne)
			return
		}
	}

	// plain window fallback
	ns := startLine - fallbackWindow
	if ns < 0 {
		ns = 0
	}
	ne := endLine + fallbackWindow
	if last := len(f.lineStarts) - 1; ne > last {
		ne = last
	}
	r.StartLine = ns + 1
	r.EndLine = ne + 1
	r.Content = renderLines(f, ns, ne)
}

// load reads and (when a grammar exists) parses the file, serving repeats
// from the cache.
func (e *Expander) load(ctx context.Context, absPath, langID string) *parsedFile {
	if f, ok := e.files.Get(absPath); ok {
		return f
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil
	}
	f := &parsedFile{
		content:    content,
		lineStarts: lineStarts(content),
	}
	if grammar, ok := symbols.GrammarForLanguage(langID); ok {
		if symbols.DefinitionNodeTypes(grammar) != nil {
			if tree, err := symbols.Parse(ctx, grammar, content); err == nil {
				f.tree = tree
				f.grammar = grammar
			}
		}
	}
	e.files.Add(absPath, f)
	return f
}

// enclosingDefinition descends from the root and returns the smallest
// definition-set node that encloses the chunk range.
func enclosingDefinition(f *parsedFile, loc models.Location) *sitter.Node {
	defs := symbols.DefinitionNodeTypes(f.grammar)
	if defs == nil {
		return nil
	}
	start := uint32(loc.StartByte)
	end := uint32(clampByte(loc.EndByte, len(f.content)))

	var best *sitter.Node
	node := f.tree.RootNode()
	for node != nil {
		if defs[node.Type()] {
			best = node
		}
		var next *sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child != nil && child.StartByte() <= start && child.EndByte() >= end {
				next = child
				break
			}
		}
		node = next
	}
	return best
}

// centerWindow shrinks [ns, ne] to budget lines while keeping the hit's
// own range inside.
func centerWindow(hitStart, hitEnd, ns, ne, budget int) (int, int) {
	span := hitEnd - hitStart + 1
	if span >= budget {
		return hitStart, hitStart + budget - 1
	}
	pad := (budget - span) / 2
	start := hitStart - pad
	if start < ns {
		start = ns
	}
	end := start + budget - 1
	if end > ne {
		end = ne
		if end-budget+1 > ns {
			start = end - budget + 1
		} else {
			start = ns
		}
	}
	return start, end
}

func renderLines(f *parsedFile, startLine, endLine int) string {
	var sb strings.Builder
	for i := startLine; i <= endLine && i < len(f.lineStarts); i++ {
		lineEnd := len(f.content)
		if i+1 < len(f.lineStarts) {
			lineEnd = f.lineStarts[i+1] - 1
		}
		line := string(f.content[f.lineStarts[i]:clampByte(lineEnd, len(f.content))])
		if len(line) > maxLineChars {
			line = line[:maxLineChars] + "…"
		}
		sb.WriteString(line)
		if i < endLine {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func lineStarts(content []byte) []int {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt returns the 0-based line containing the byte offset.
func lineAt(starts []int, offset int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func clampByte(b, max int) int {
	if b < 0 {
		return 0
	}
	if b > max {
		return max
	}
	return b
}
