package symbols

import (
	"context"
	"testing"
)

func extract(t *testing.T, langID, text string) (symType, symName, symSig string, found bool) {
	t.Helper()
	m := NewExtractor("").Extract(context.Background(), []byte(text), langID)
	if m.Type == nil {
		return "", "", "", false
	}
	return *m.Type, deref(m.Name), deref(m.Signature), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestExtractGoFunction(t *testing.T) {
	typ, name, sig, ok := extract(t, "go", "package x\n\nfunc Fetch(url string) error {\n\treturn nil\n}\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "function" || name != "Fetch" {
		t.Errorf("got (%s, %s)", typ, name)
	}
	if sig != "func Fetch(url string) error" {
		t.Errorf("signature = %q", sig)
	}
}

func TestExtractGoMethodQualified(t *testing.T) {
	typ, name, _, ok := extract(t, "go", "package x\n\nfunc (s *Store) Close() error {\n\treturn nil\n}\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "method" || name != "Store.Close" {
		t.Errorf("got (%s, %s), want (method, Store.Close)", typ, name)
	}
}

func TestExtractGoInterface(t *testing.T) {
	typ, name, _, ok := extract(t, "go", "package x\n\ntype Walker interface {\n\tWalk() error\n}\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "interface" || name != "Walker" {
		t.Errorf("got (%s, %s)", typ, name)
	}
}

func TestExtractGoStructIsClass(t *testing.T) {
	typ, name, _, ok := extract(t, "go", "package x\n\ntype Config struct {\n\tURL string\n}\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "class" || name != "Config" {
		t.Errorf("got (%s, %s)", typ, name)
	}
}

func TestExtractFirstSymbolWins(t *testing.T) {
	src := "package x\n\nfunc First() {}\n\nfunc Second() {}\n"
	_, name, _, ok := extract(t, "go", src)
	if !ok || name != "First" {
		t.Errorf("expected First, got %q", name)
	}
}

func TestExtractPythonClassAndMethod(t *testing.T) {
	typ, name, _, ok := extract(t, "py", "class Parser:\n    def parse(self):\n        pass\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "class" || name != "Parser" {
		t.Errorf("got (%s, %s)", typ, name)
	}

	// a chunk starting inside the class body sees the method first
	typ, name, _, ok = extract(t, "py", "def parse(self):\n    return 1\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "function" || name != "parse" {
		t.Errorf("got (%s, %s)", typ, name)
	}
}

func TestExtractDockerfileStage(t *testing.T) {
	typ, name, _, ok := extract(t, "dockerfile", "FROM golang:1.21 AS builder\nRUN go build -o app .\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "class" || name != "builder" {
		t.Errorf("got (%s, %s), want (class, builder)", typ, name)
	}
}

func TestExtractBashFunction(t *testing.T) {
	typ, name, _, ok := extract(t, "sh", "function deploy_app {\n  echo hi\n}\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "function" || name != "deploy_app" {
		t.Errorf("got (%s, %s)", typ, name)
	}
}

func TestExtractRustTraitIsInterface(t *testing.T) {
	typ, name, _, ok := extract(t, "rs", "trait Render {\n    fn render(&self) -> String;\n}\n")
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "interface" || name != "Render" {
		t.Errorf("got (%s, %s)", typ, name)
	}
}

func TestExtractRustImplMethod(t *testing.T) {
	src := "struct Point;\n\nimpl Point {\n    fn norm(&self) -> f64 { 0.0 }\n}\n"
	// the struct comes first in document order
	typ, name, _, ok := extract(t, "rs", src)
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "class" || name != "Point" {
		t.Errorf("got (%s, %s)", typ, name)
	}

	implOnly := "impl Point {\n    fn norm(&self) -> f64 { 0.0 }\n}\n"
	typ, name, _, ok = extract(t, "rs", implOnly)
	if !ok {
		t.Fatal("no symbol extracted")
	}
	if typ != "method" || name != "Point.norm" {
		t.Errorf("got (%s, %s), want (method, Point.norm)", typ, name)
	}
}

func TestExtractUnknownLanguageReturnsNulls(t *testing.T) {
	m := NewExtractor("").Extract(context.Background(), []byte("whatever"), "nosuchlang")
	if m.Type != nil || m.Name != nil || m.Signature != nil {
		t.Errorf("expected all-nil metadata, got %+v", m)
	}
}

func TestExtractGarbageNeverPanics(t *testing.T) {
	m := NewExtractor("").Extract(context.Background(), []byte("\x00\xff garbage {{{"), "go")
	_ = m // any outcome is fine as long as it does not panic
}

func TestGrammarForLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want string
		ok   bool
	}{
		{"go", "go", true},
		{"js", "javascript", true},
		{"jsx", "javascript", true},
		{"ts", "typescript", true},
		{"tsx", "tsx", true},
		{"py", "python", true},
		{"rs", "rust", true},
		{"h", "c", true},
		{"hpp", "cpp", true},
		{"tf", "terraform", true},
		{"tfvars", "hcl", true},
		{"zsh", "bash", true},
		{"scss", "css", true},
		{"dockerfile", "dockerfile", true},
		{"kubernetes", "yaml", true},
		{"txt", "", false},
		{"gotmpl", "", false},
	}
	for _, tt := range tests {
		got, ok := GrammarForLanguage(tt.lang)
		if ok != tt.ok || got != tt.want {
			t.Errorf("GrammarForLanguage(%q) = (%q, %v), want (%q, %v)", tt.lang, got, ok, tt.want, tt.ok)
		}
	}
}
