package symbols

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// Extractor pulls the first symbol definition out of a chunk via the
// grammar's tree-sitter query. It never returns an error: any failure
// (unknown grammar, parse error, missing query) yields empty metadata.
type Extractor struct {
	projectRoot string

	mu      sync.Mutex
	queries map[string]*sitter.Query
}

// NewExtractor builds an extractor. projectRoot anchors user query
// overrides and may be empty.
func NewExtractor(projectRoot string) *Extractor {
	return &Extractor{
		projectRoot: projectRoot,
		queries:     make(map[string]*sitter.Query),
	}
}

// Extract returns the first symbol of the chunk in document order, with
// methods qualified as Owner.method.
func (e *Extractor) Extract(ctx context.Context, text []byte, langID string) models.SymbolMetadata {
	grammarName, ok := GrammarForLanguage(langID)
	if !ok {
		return models.SymbolMetadata{}
	}
	lang, ok := Language(grammarName)
	if !ok {
		return models.SymbolMetadata{}
	}
	q, ok := e.queryFor(grammarName, lang)
	if !ok {
		return models.SymbolMetadata{}
	}

	tree, err := Parse(ctx, grammarName, text)
	if err != nil {
		return models.SymbolMetadata{}
	}
	defer tree.Close()

	def, name, capType := firstCapture(q, tree.RootNode(), text)
	if def == nil {
		return models.SymbolMetadata{}
	}

	symType, symName := e.qualify(grammarName, def, name, capType, text)
	sig := signature(def, text)

	return models.SymbolMetadata{
		Type:      &symType,
		Name:      &symName,
		Signature: &sig,
	}
}

// queryFor compiles and caches the grammar's query.
func (e *Extractor) queryFor(grammarName string, lang *sitter.Language) (*sitter.Query, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if q, ok := e.queries[grammarName]; ok {
		return q, q != nil
	}
	src, ok := ResolveQuery(e.projectRoot, grammarName)
	if !ok {
		e.queries[grammarName] = nil
		return nil, false
	}
	q, err := sitter.NewQuery(src, lang)
	if err != nil {
		e.queries[grammarName] = nil
		return nil, false
	}
	e.queries[grammarName] = q
	return q, true
}

// firstCapture runs the query and returns the earliest @definition.* node
// in document order, its @name node, and the capture's canonical type.
func firstCapture(q *sitter.Query, root *sitter.Node, src []byte) (def, name *sitter.Node, capType string) {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var bestStart uint32
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var mDef, mName *sitter.Node
		var mType string
		for _, c := range m.Captures {
			capName := q.CaptureNameForId(c.Index)
			switch {
			case capName == "name":
				mName = c.Node
			case strings.HasPrefix(capName, "definition"):
				mDef = c.Node
				if _, t, ok := strings.Cut(capName, "."); ok {
					mType = t
				}
			}
		}
		if mDef == nil {
			continue
		}
		if def == nil || mDef.StartByte() < bestStart {
			def, name, capType = mDef, mName, mType
			bestStart = mDef.StartByte()
		}
	}
	return def, name, capType
}

// qualify maps the capture to a canonical symbol type and, for methods,
// prefixes the owner: Go receiver types, C++ qualified names, Rust impl
// targets, and class-like ancestors elsewhere.
func (e *Extractor) qualify(grammarName string, def, name *sitter.Node, capType string, src []byte) (string, string) {
	symName := ""
	if name != nil {
		symName = name.Content(src)
	}

	symType := canonicalType(capType)

	switch grammarName {
	case "go":
		if def.Type() == "method_declaration" {
			if recv := receiverType(def, src); recv != "" {
				symName = recv + "." + symName
			}
		}
	case "cpp":
		// qualified_identifier already carries Class::method
	case "rust":
		if symType == models.SymbolFunction {
			if owner := ancestorOwner(grammarName, def, src); owner != "" {
				symType = models.SymbolMethod
				symName = owner + "." + symName
			}
		}
	default:
		switch symType {
		case models.SymbolFunction:
			if owner := ancestorOwner(grammarName, def, src); owner != "" {
				symType = models.SymbolMethod
				symName = owner + "." + symName
			}
		case models.SymbolMethod:
			if owner := ancestorOwner(grammarName, def, src); owner != "" {
				symName = owner + "." + symName
			} else if grammarName == "ruby" {
				// a bare def outside any class is a plain function
				symType = models.SymbolFunction
			}
		}
	}
	return symType, symName
}

func canonicalType(capType string) string {
	switch capType {
	case "class":
		return models.SymbolClass
	case "method":
		return models.SymbolMethod
	case "interface":
		return models.SymbolInterface
	default:
		return models.SymbolFunction
	}
}

// receiverType extracts the Go receiver's type name, stripping pointers
// and generic parameters.
func receiverType(def *sitter.Node, src []byte) string {
	recv := def.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := recv.Content(src)
	text = strings.Trim(text, "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	t := fields[len(fields)-1]
	t = strings.TrimPrefix(t, "*")
	if i := strings.Index(t, "["); i > 0 {
		t = t[:i]
	}
	return t
}

// ancestorOwner walks up from def looking for an enclosing class-like
// node and returns its name.
func ancestorOwner(grammarName string, def *sitter.Node, src []byte) string {
	owners := ownerNodeTypes[grammarName]
	if owners == nil {
		return ""
	}
	for n := def.Parent(); n != nil; n = n.Parent() {
		if !owners[n.Type()] {
			continue
		}
		if grammarName == "rust" && n.Type() == "impl_item" {
			if t := n.ChildByFieldName("type"); t != nil {
				return t.Content(src)
			}
			continue
		}
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return ""
}

// signature returns the verbatim header of the definition: everything up
// to the body opener, trailing whitespace and the opener itself stripped.
func signature(def *sitter.Node, src []byte) string {
	start := def.StartByte()
	end := def.EndByte()
	if body := def.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	text := string(src[start:end])
	if body := def.ChildByFieldName("body"); body == nil {
		// no body field: cut at the first opener
		if i := strings.IndexAny(text, "{:\n"); i >= 0 {
			text = text[:i]
		}
	}
	text = strings.TrimRight(text, " \t\n{:=")
	return text
}
