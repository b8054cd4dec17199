package search

import (
	"sort"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// RRFConstant is the rank-smoothing constant k in 1/(k + rank).
const RRFConstant = 60

// DefinitionBoost multiplies the fused score of chunks whose symbol_type
// is set, so definitions outrank usages.
const DefinitionBoost = 2.0

// FuseResults combines the two ranked arms with Reciprocal Rank Fusion:
// each result contributes 1/(k+rank) per arm, summed per (filename,
// location). When boostDefinitions is set, rows with a symbol_type get the
// definition boost before the final sort.
//
// Tie-breaks: higher fused score, then presence in both arms, then higher
// vector score, then lexicographic (filename, location).
func FuseResults(vector, keyword []models.SearchResult, boostDefinitions bool) []models.SearchResult {
	type fused struct {
		r      models.SearchResult
		score  float64
		inBoth bool
	}
	scores := make(map[string]*fused)

	key := func(r models.SearchResult) string {
		return r.FilePath + "\x00" + r.Location.String()
	}

	for rank, r := range vector {
		r.MatchType = models.MatchVector
		scores[key(r)] = &fused{
			r:     r,
			score: 1.0 / float64(RRFConstant+rank+1),
		}
	}
	for rank, r := range keyword {
		contrib := 1.0 / float64(RRFConstant+rank+1)
		if existing, ok := scores[key(r)]; ok {
			existing.score += contrib
			existing.inBoth = true
			existing.r.MatchType = models.MatchBoth
			existing.r.KeywordScore = r.KeywordScore
		} else {
			r.MatchType = models.MatchKeyword
			scores[key(r)] = &fused{r: r, score: contrib}
		}
	}

	out := make([]models.SearchResult, 0, len(scores))
	for _, f := range scores {
		if boostDefinitions && f.r.SymbolType != nil {
			f.score *= DefinitionBoost
		}
		f.r.Score = f.score
		out = append(out, f.r)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		aBoth := a.MatchType == models.MatchBoth
		bBoth := b.MatchType == models.MatchBoth
		if aBoth != bBoth {
			return aBoth
		}
		av, bv := 0.0, 0.0
		if a.VectorScore != nil {
			av = *a.VectorScore
		}
		if b.VectorScore != nil {
			bv = *b.VectorScore
		}
		if av != bv {
			return av > bv
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.Location.String() < b.Location.String()
	})
	return out
}

// normalizeScores rescales fused scores into [0, 1] by the observed
// maximum so the min-score threshold is meaningful across result sets.
func normalizeScores(results []models.SearchResult) {
	var max float64
	for _, r := range results {
		if r.Score > max {
			max = r.Score
		}
	}
	if max <= 0 {
		return
	}
	for i := range results {
		results[i].Score /= max
	}
}

// applyThreshold drops results scoring under min and keeps the top limit.
func applyThreshold(results []models.SearchResult, min float64, limit int) []models.SearchResult {
	out := results[:0]
	for _, r := range results {
		if r.Score >= min {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
