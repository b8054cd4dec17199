package keyword

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitCodeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{
			name:  "camelCase",
			token: "getUserById",
			want:  []string{"getUserById", "get", "User", "By", "Id"},
		},
		{
			name:  "snake_case",
			token: "get_user_by_id",
			want:  []string{"get_user_by_id", "get", "user", "by", "id"},
		},
		{
			name:  "kebab-case",
			token: "docker-compose",
			want:  []string{"docker-compose", "docker", "compose"},
		},
		{
			name:  "acronym run",
			token: "parseHTTPRequest",
			want:  []string{"parseHTTPRequest", "parse", "HTTP", "Request"},
		},
		{
			name:  "plain word stays single",
			token: "handler",
			want:  []string{"handler"},
		},
		{
			name:  "empty",
			token: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitCodeIdentifier(tt.token)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCodeIdentifier(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestPreprocessContainsSubTokens(t *testing.T) {
	out := Preprocess("func getUserById(id string) {}", "")
	for _, want := range []string{"getUserById", "get", "User", "By", "Id", "string"} {
		if !containsToken(out, want) {
			t.Errorf("Preprocess output missing token %q: %s", want, out)
		}
	}
}

func TestPreprocessAppendsNaturalWords(t *testing.T) {
	out := Preprocess("// fetch the user record\nfunc fetchUser() {}", "")
	for _, want := range []string{"fetch", "the", "user", "record"} {
		if !containsToken(out, want) {
			t.Errorf("Preprocess output missing comment word %q: %s", want, out)
		}
	}
}

func TestPreprocessFilenameComponents(t *testing.T) {
	out := Preprocess("package store", "internal/store/chunk_writer.go")
	for _, want := range []string{"internal", "store", "chunk", "writer", "go"} {
		if !containsToken(out, want) {
			t.Errorf("Preprocess output missing filename token %q: %s", want, out)
		}
	}
}

// Preprocessing its own output must be stable modulo whitespace.
func TestPreprocessIdempotent(t *testing.T) {
	first := Preprocess("func getUserById(id string) {}", "")
	second := Preprocess(first, "")

	set := func(s string) map[string]struct{} {
		m := make(map[string]struct{})
		for _, t := range strings.Fields(s) {
			m[strings.ToLower(t)] = struct{}{}
		}
		return m
	}
	if !reflect.DeepEqual(set(first), set(second)) {
		t.Errorf("Preprocess not idempotent:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func containsToken(joined, token string) bool {
	for _, t := range strings.Fields(joined) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}
