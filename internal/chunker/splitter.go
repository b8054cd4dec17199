package chunker

import (
	"regexp"
	"sort"

	"github.com/VioletCranberry/cocosearch/internal/language"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// Chunk is one split piece with its byte range in the original file.
type Chunk struct {
	Text     string
	Location models.Location
}

// Splitter splits file contents into byte-bounded chunks using a
// hierarchical separator ladder. Every emitted chunk is at most ChunkSize
// bytes; adjacent chunks overlap by at most ChunkOverlap bytes.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int

	registry *language.Registry
}

// NewSplitter builds a splitter over the given handler registry.
func NewSplitter(registry *language.Registry, chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 8
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		registry:     registry,
	}
}

// Split splits text for the given language id. Languages backed by a
// tree-sitter grammar get AST node boundaries as the highest-priority
// separators; everything else starts at the handler's regex ladder.
func (s *Splitter) Split(text, langID string) []Chunk {
	if text == "" {
		return nil
	}
	if len(text) <= s.ChunkSize {
		return []Chunk{chunkAt(text, 0, 0, len(text))}
	}
	seps := s.separatorsFor(langID)

	if bounds := astBoundaries(text, langID); len(bounds) > 2 {
		return s.pack(text, 0, bounds, seps)
	}
	return s.split(text, 0, seps)
}

func (s *Splitter) separatorsFor(langID string) []*regexp.Regexp {
	if s.registry != nil {
		if h, ok := s.registry.HandlerFor(langID); ok {
			return h.Separators()
		}
	}
	return language.DefaultSeparators()
}

// split recursively applies the separator ladder. base is the byte offset
// of text within the original file.
func (s *Splitter) split(text string, base int, seps []*regexp.Regexp) []Chunk {
	if len(text) <= s.ChunkSize {
		return []Chunk{chunkAt(text, base, 0, len(text))}
	}
	if len(seps) == 0 {
		return s.sliceBytes(text, base)
	}

	bounds := matchBounds(text, seps[0])
	if len(bounds) <= 2 {
		// separator produced no interior cut; fall through to the next
		return s.split(text, base, seps[1:])
	}
	return s.pack(text, base, bounds, seps[1:])
}

// matchBounds returns sorted piece boundaries: 0, every separator match
// start, and len(text). The separator text stays with the following piece
// so chunk ranges cover the file exactly.
func matchBounds(text string, sep *regexp.Regexp) []int {
	idxs := sep.FindAllStringIndex(text, -1)
	bounds := make([]int, 0, len(idxs)+2)
	bounds = append(bounds, 0)
	for _, m := range idxs {
		if m[0] > 0 && m[0] < len(text) {
			bounds = append(bounds, m[0])
		}
	}
	bounds = append(bounds, len(text))
	sort.Ints(bounds)
	return dedupeInts(bounds)
}

// pack greedily accumulates pieces up to ChunkSize, recursing with the
// remaining separators into any piece that alone exceeds the cap. Overlap
// is realised by seeking backward from each cut to the nearest boundary
// within ChunkOverlap bytes.
func (s *Splitter) pack(text string, base int, bounds []int, nextSeps []*regexp.Regexp) []Chunk {
	pieces := make([][2]int, 0, len(bounds)-1)
	for i := 1; i < len(bounds); i++ {
		pieces = append(pieces, [2]int{bounds[i-1], bounds[i]})
	}

	var out []Chunk
	curStart := pieces[0][0]
	for idx := 0; idx < len(pieces); idx++ {
		p := pieces[idx]
		if p[1]-p[0] > s.ChunkSize {
			// the piece alone busts the cap: flush the accumulation,
			// recurse into the piece with the next separator
			if p[0] > curStart {
				out = append(out, chunkAt(text, base, curStart, p[0]))
			}
			out = append(out, s.split(text[p[0]:p[1]], base+p[0], nextSeps)...)
			curStart = p[1]
			continue
		}
		if p[1]-curStart > s.ChunkSize {
			// adding this piece overflows: cut before it and retry with
			// an overlap-adjusted start
			out = append(out, chunkAt(text, base, curStart, p[0]))
			curStart = s.overlapStart(bounds, p[0], curStart, p[1])
			idx--
			continue
		}
		if idx == len(pieces)-1 {
			out = append(out, chunkAt(text, base, curStart, p[1]))
		}
	}
	return out
}

// overlapStart returns the start of the chunk following a cut: the
// earliest boundary within ChunkOverlap bytes of the cut that still lets
// the next piece fit and keeps packing moving forward.
func (s *Splitter) overlapStart(bounds []int, cut, prevStart, nextEnd int) int {
	start := cut
	for j := len(bounds) - 1; j >= 0; j-- {
		b := bounds[j]
		if b >= cut {
			continue
		}
		if cut-b > s.ChunkOverlap || b <= prevStart || nextEnd-b > s.ChunkSize {
			break
		}
		start = b
	}
	return start
}

// sliceBytes is the last-resort fixed-window splitter.
func (s *Splitter) sliceBytes(text string, base int) []Chunk {
	step := s.ChunkSize - s.ChunkOverlap
	if step <= 0 {
		step = s.ChunkSize
	}
	var out []Chunk
	for start := 0; start < len(text); start += step {
		end := start + s.ChunkSize
		if end > len(text) {
			end = len(text)
		}
		out = append(out, chunkAt(text, base, start, end))
		if end == len(text) {
			break
		}
	}
	return out
}

func chunkAt(text string, base, start, end int) Chunk {
	return Chunk{
		Text: text[start:end],
		Location: models.Location{
			StartByte: base + start,
			EndByte:   base + end,
		},
	}
}

func dedupeInts(xs []int) []int {
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
