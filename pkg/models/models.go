package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location identifies a chunk's byte range within its file. The pair
// (filename, location) is the chunk primary key; the string form is what
// gets persisted.
type Location struct {
	StartByte int `json:"start_byte"`
	EndByte   int `json:"end_byte"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d-%d", l.StartByte, l.EndByte)
}

// ParseLocation parses the persisted "start-end" form back into a Location.
func ParseLocation(s string) (Location, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return Location{}, fmt.Errorf("invalid location %q", s)
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
	}
	return Location{StartByte: start, EndByte: end}, nil
}

// ChunkMetadata is the structured-search metadata a language handler
// extracts from a chunk. All fields may be empty.
type ChunkMetadata struct {
	BlockType  string `json:"block_type"`
	Hierarchy  string `json:"hierarchy"`
	LanguageID string `json:"language_id"`
}

// SymbolMetadata describes the first symbol found in a chunk. Nil fields
// mean "no symbol extracted", not "no symbol present".
type SymbolMetadata struct {
	Type      *string `json:"symbol_type,omitempty"`
	Name      *string `json:"symbol_name,omitempty"`
	Signature *string `json:"symbol_signature,omitempty"`
}

// Symbol type values stored in symbol_type.
const (
	SymbolFunction  = "function"
	SymbolClass     = "class"
	SymbolMethod    = "method"
	SymbolInterface = "interface"
)

// Chunk is the unit of retrieval as persisted in a per-index chunk table.
type Chunk struct {
	Filename        string         `json:"filename"`
	Location        Location       `json:"location"`
	ContentText     string         `json:"content"`
	ContentTSVInput string         `json:"-"`
	Embedding       []float32      `json:"-"`
	Metadata        ChunkMetadata  `json:"metadata"`
	Symbol          SymbolMetadata `json:"symbol"`
}

// MatchType records which search arms produced a result.
type MatchType string

const (
	MatchVector  MatchType = "vector"
	MatchKeyword MatchType = "keyword"
	MatchBoth    MatchType = "both"
)

// SearchResult is the wire shape returned to API callers.
type SearchResult struct {
	FilePath        string    `json:"file_path"`
	StartLine       int       `json:"start_line"`
	EndLine         int       `json:"end_line"`
	Score           float64   `json:"score"`
	MatchType       MatchType `json:"match_type"`
	VectorScore     *float64  `json:"vector_score,omitempty"`
	KeywordScore    *float64  `json:"keyword_score,omitempty"`
	Content         string    `json:"content"`
	SymbolType      *string   `json:"symbol_type,omitempty"`
	SymbolName      *string   `json:"symbol_name,omitempty"`
	SymbolSignature *string   `json:"symbol_signature,omitempty"`
	BlockType       string    `json:"block_type"`
	Hierarchy       string    `json:"hierarchy"`
	LanguageID      string    `json:"language_id"`

	Location Location `json:"-"`
}

// Parse status values recorded per file after an indexing pass.
const (
	ParseOK          = "ok"
	ParsePartial     = "partial"
	ParseError       = "error"
	ParseUnsupported = "unsupported"
)

// ParseResult is a per-file tree-sitter parse outcome.
type ParseResult struct {
	FilePath     string `json:"file_path"`
	Language     string `json:"language"`
	ParseStatus  string `json:"parse_status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Index status values.
const (
	IndexStatusIndexing = "indexing"
	IndexStatusIndexed  = "indexed"
	IndexStatusError    = "error"
)

// IndexMetadata describes a named logical store.
type IndexMetadata struct {
	Name          string    `json:"name"`
	CanonicalPath string    `json:"canonical_path"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Status        string    `json:"status"`
}

// IndexStats summarises the write outcome of one indexing pass.
type IndexStats struct {
	Insertions int `json:"num_insertions"`
	Deletions  int `json:"num_deletions"`
	Updates    int `json:"num_updates"`
}
