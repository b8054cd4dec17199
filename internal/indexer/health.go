package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/VioletCranberry/cocosearch/internal/symbols"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// errorLineLimit caps how many error line numbers a partial parse records.
const errorLineLimit = 10

// trackParseHealth re-parses every indexed file and rebuilds the
// parse-result table. Any failure here is logged and swallowed: parse
// tracking must never fail an indexing run.
func (ix *Indexer) trackParseHealth(ctx context.Context) {
	files, err := ix.Store.ListIndexedFiles(ctx, ix.IndexName)
	if err != nil {
		log.Warn().Err(err).Str("index", ix.IndexName).Msg("parse tracking: listing files failed")
		return
	}

	results := make([]models.ParseResult, 0, len(files))
	for rel, lang := range files {
		results = append(results, ix.classifyFile(ctx, rel, lang))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].FilePath < results[j].FilePath })

	if err := ix.Store.RebuildParseResults(ctx, ix.IndexName, results); err != nil {
		log.Warn().Err(err).Str("index", ix.IndexName).Msg("parse tracking: rebuild failed")
	}
}

// classifyFile parses one file with its language's grammar and classifies
// the outcome as ok, partial, error, or unsupported.
func (ix *Indexer) classifyFile(ctx context.Context, rel, lang string) models.ParseResult {
	res := models.ParseResult{FilePath: rel, Language: lang}

	grammar, ok := symbols.GrammarForLanguage(lang)
	if !ok {
		res.ParseStatus = models.ParseUnsupported
		return res
	}

	content, err := ix.FileReader.ReadFile(filepath.Join(ix.RepoRoot, filepath.FromSlash(rel)))
	if err != nil {
		res.ParseStatus = models.ParseError
		res.ErrorMessage = err.Error()
		return res
	}

	tree, err := symbols.Parse(ctx, grammar, content)
	if err != nil {
		res.ParseStatus = models.ParseError
		res.ErrorMessage = err.Error()
		return res
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		res.ParseStatus = models.ParseOK
		return res
	}

	res.ParseStatus = models.ParsePartial
	lines, more := symbols.ErrorLines(root, errorLineLimit)
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%d", l))
	}
	msg := "syntax errors at lines " + strings.Join(parts, ", ")
	if more > 0 {
		msg += fmt.Sprintf(" +%d more", more)
	}
	res.ErrorMessage = msg
	return res
}
