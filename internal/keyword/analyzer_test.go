package keyword

import (
	"strings"
	"testing"
)

func TestHasIdentifierPattern(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"How do I publish to PyPi?", false},
		{"what is GitHub", false},
		{"deploy with FastAPI", false},
		{"does this run on macOS", false},
		{"find getUserById function", true},
		{"where is parse_config used", true},
		{"x_y", true},
		{"HttpServerBuilder internals", true},
		{"plain english question", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := HasIdentifierPattern(tt.query); got != tt.want {
				t.Errorf("HasIdentifierPattern(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

// Repeated calls over the same input must agree.
func TestHasIdentifierPatternDeterministic(t *testing.T) {
	q := "find getUserById in parse_config"
	first := HasIdentifierPattern(q)
	for i := 0; i < 10; i++ {
		if HasIdentifierPattern(q) != first {
			t.Fatal("HasIdentifierPattern not deterministic")
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	out := NormalizeQuery("find getUserById function")
	for _, want := range []string{"getUserById", "get", "User", "By", "Id", "find", "function"} {
		if !strings.Contains(" "+out+" ", " "+want+" ") {
			t.Errorf("NormalizeQuery output missing %q: %s", want, out)
		}
	}
}

func TestNormalizeQueryPreservesPlainWords(t *testing.T) {
	if out := NormalizeQuery("how does auth work"); out != "how does auth work" {
		t.Errorf("plain query mangled: %q", out)
	}
}
