package keyword

import (
	"regexp"
	"strings"
	"unicode"
)

var snakeRegex = regexp.MustCompile(`^[A-Za-z0-9]+(_[A-Za-z0-9]+)+$`)

// HasIdentifierPattern reports whether the query contains a code-identifier
// shaped word: a snake_case identifier of any length, a camelCase token of
// at least 6 chars starting lowercase with a lower-to-upper transition, or a
// PascalCase token of at least 8 chars with an upper-lower-upper transition.
// The length floors keep proper nouns like "PyPi", "GitHub", "FastAPI", and
// "macOS" from triggering hybrid search.
func HasIdentifierPattern(query string) bool {
	for _, word := range identRegex.FindAllString(query, -1) {
		if snakeRegex.MatchString(word) && strings.Contains(word, "_") {
			return true
		}
		if isCamelCase(word) || isPascalCase(word) {
			return true
		}
	}
	return false
}

// isCamelCase: >= 6 chars, starts lowercase, has a lower->upper transition.
func isCamelCase(word string) bool {
	runes := []rune(word)
	if len(runes) < 6 || !unicode.IsLower(runes[0]) {
		return false
	}
	for i := 1; i < len(runes); i++ {
		if unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i]) {
			return true
		}
	}
	return false
}

// isPascalCase: >= 8 chars, starts uppercase, has an upper->lower->upper run.
func isPascalCase(word string) bool {
	runes := []rune(word)
	if len(runes) < 8 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for i := 2; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			// require an uppercase somewhere before the lowercase run
			for j := i - 2; j >= 0; j-- {
				if unicode.IsUpper(runes[j]) {
					return true
				}
				if !unicode.IsLower(runes[j]) {
					break
				}
			}
		}
	}
	return false
}

// NormalizeQuery expands identifier-shaped words with the same token rules
// as the index-side preprocessor; all other fragments pass through verbatim.
// The output is what gets handed to websearch_to_tsquery.
func NormalizeQuery(query string) string {
	var out []string
	for _, field := range strings.Fields(query) {
		word := strings.Trim(field, `.,;:!?"'()[]{}<>`)
		if word != "" && identRegex.MatchString(word) && len(SplitCodeIdentifier(word)) > 1 {
			out = append(out, SplitCodeIdentifier(word)...)
			continue
		}
		out = append(out, field)
	}
	return strings.Join(out, " ")
}
