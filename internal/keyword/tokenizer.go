package keyword

import (
	"regexp"
	"strings"
	"unicode"
)

// identRegex matches identifier-shaped substrings; Preprocess drops matches
// shorter than 2 characters.
var identRegex = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

// wordRegex matches natural-language words, picking up comment prose.
var wordRegex = regexp.MustCompile(`\b\w+\b`)

// SplitCodeIdentifier splits a camelCase, snake_case, or kebab-case
// identifier into sub-tokens. The original token is always included first.
//
//	SplitCodeIdentifier("getUserById")   -> ["getUserById", "get", "User", "By", "Id"]
//	SplitCodeIdentifier("get_user_by_id") -> ["get_user_by_id", "get", "user", "by", "id"]
func SplitCodeIdentifier(token string) []string {
	if token == "" {
		return []string{}
	}
	result := []string{token}
	for _, part := range splitSeparators(token) {
		sub := splitCamel(part)
		if len(sub) == 1 && sub[0] == token {
			continue
		}
		result = append(result, sub...)
	}
	return result
}

// splitSeparators splits on underscores and dashes, dropping empties.
func splitSeparators(token string) []string {
	f := func(r rune) bool { return r == '_' || r == '-' }
	return strings.FieldsFunc(token, f)
}

// splitCamel splits camelCase and PascalCase runs, keeping acronyms whole
// ("parseHTTPRequest" -> ["parse", "HTTP", "Request"]) and digit runs
// separate.
func splitCamel(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	var current strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			boundary := false
			switch {
			case unicode.IsUpper(r):
				prevIsLower := unicode.IsLower(prev)
				nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				boundary = prevIsLower || nextIsLower || unicode.IsDigit(prev)
			case unicode.IsDigit(r):
				boundary = !unicode.IsDigit(prev)
			default:
				boundary = unicode.IsDigit(prev)
			}
			if boundary && current.Len() > 0 {
				result = append(result, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

// Preprocess produces the space-joined token stream stored as
// content_tsv_input. Identifiers are expanded into sub-tokens, all
// natural-language words are appended lowercased, and the filename's path
// components (when given) are mixed in so file names are searchable.
func Preprocess(text, filename string) string {
	var out []string

	for _, ident := range identRegex.FindAllString(text, -1) {
		if len(ident) < 2 {
			continue
		}
		out = append(out, SplitCodeIdentifier(ident)...)
	}

	for _, w := range wordRegex.FindAllString(text, -1) {
		out = append(out, strings.ToLower(w))
	}

	if filename != "" {
		out = append(out, filenameTokens(filename)...)
	}

	return strings.Join(out, " ")
}

// filenameTokens splits a path into lowercased, camel-split components.
func filenameTokens(filename string) []string {
	var out []string
	f := func(r rune) bool { return r == '/' || r == '.' || r == '_' || r == '-' }
	for _, comp := range strings.FieldsFunc(filename, f) {
		if comp == "" {
			continue
		}
		for _, t := range splitCamel(comp) {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}
