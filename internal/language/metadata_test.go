package language

import (
	"testing"

	"github.com/VioletCranberry/cocosearch/pkg/models"
)

func extract(t *testing.T, langID, text string) models.ChunkMetadata {
	t.Helper()
	h, ok := NewRegistry().HandlerFor(langID)
	if !ok {
		t.Fatalf("no handler for %q", langID)
	}
	return h.ExtractMetadata(text)
}

func TestDockerfileMetadata(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.ChunkMetadata
	}{
		{
			name: "from with stage",
			text: "FROM golang:1.21 AS builder\nRUN go build -o app .\n",
			want: models.ChunkMetadata{BlockType: "FROM", Hierarchy: "stage:builder", LanguageID: "dockerfile"},
		},
		{
			name: "bare from",
			text: "FROM alpine:3.19\n",
			want: models.ChunkMetadata{BlockType: "FROM", Hierarchy: "image:alpine:3.19", LanguageID: "dockerfile"},
		},
		{
			name: "run keeps empty hierarchy",
			text: "RUN apk add --no-cache git\n",
			want: models.ChunkMetadata{BlockType: "RUN", LanguageID: "dockerfile"},
		},
		{
			name: "comment stripped first",
			text: "# build stage\nFROM golang:1.21 AS build\n",
			want: models.ChunkMetadata{BlockType: "FROM", Hierarchy: "stage:build", LanguageID: "dockerfile"},
		},
		{
			name: "maintainer instruction",
			text: "MAINTAINER ops@example.com\n",
			want: models.ChunkMetadata{BlockType: "MAINTAINER", LanguageID: "dockerfile"},
		},
		{
			name: "lowercase instruction ignored",
			text: "from alpine\n",
			want: models.ChunkMetadata{LanguageID: "dockerfile"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extract(t, "dockerfile", tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHCLMetadata(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.ChunkMetadata
	}{
		{
			name: "resource with two labels",
			text: `resource "aws_s3_bucket" "data" {`,
			want: models.ChunkMetadata{BlockType: "resource", Hierarchy: "resource.aws_s3_bucket.data", LanguageID: "hcl"},
		},
		{
			name: "variable with one label",
			text: `variable "region" {`,
			want: models.ChunkMetadata{BlockType: "variable", Hierarchy: "variable.region", LanguageID: "hcl"},
		},
		{
			name: "terraform block without labels",
			text: "terraform {\n  required_version = \">= 1.0\"\n}",
			want: models.ChunkMetadata{BlockType: "terraform", Hierarchy: "terraform", LanguageID: "hcl"},
		},
		{
			name: "comment stripped",
			text: "# storage\nresource \"aws_s3_bucket\" \"logs\" {",
			want: models.ChunkMetadata{BlockType: "resource", Hierarchy: "resource.aws_s3_bucket.logs", LanguageID: "hcl"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the tf extension resolves to the same handler
			if got := extract(t, "tf", tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBashMetadata(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.ChunkMetadata
	}{
		{
			name: "function keyword form",
			text: "# Deploy\nfunction deploy_app {",
			want: models.ChunkMetadata{BlockType: "function", Hierarchy: "function:deploy_app", LanguageID: "bash"},
		},
		{
			name: "parens form",
			text: "cleanup() {\n  rm -rf tmp\n}",
			want: models.ChunkMetadata{BlockType: "function", Hierarchy: "function:cleanup", LanguageID: "bash"},
		},
		{
			name: "keyword and parens form",
			text: "function retry() {",
			want: models.ChunkMetadata{BlockType: "function", Hierarchy: "function:retry", LanguageID: "bash"},
		},
		{
			name: "no function",
			text: "echo hello\n",
			want: models.ChunkMetadata{LanguageID: "bash"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extract(t, "bash", tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScalaMetadata(t *testing.T) {
	tests := []struct {
		text string
		want models.ChunkMetadata
	}{
		{
			text: "case class User(name: String)",
			want: models.ChunkMetadata{BlockType: "class", Hierarchy: "class:User", LanguageID: "scala"},
		},
		{
			text: "sealed trait Shape",
			want: models.ChunkMetadata{BlockType: "trait", Hierarchy: "trait:Shape", LanguageID: "scala"},
		},
		{
			text: "object Main extends App {",
			want: models.ChunkMetadata{BlockType: "object", Hierarchy: "object:Main", LanguageID: "scala"},
		},
		{
			text: "override def toString: String = name",
			want: models.ChunkMetadata{BlockType: "function", Hierarchy: "function:toString", LanguageID: "scala"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := extract(t, "scala", tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGoTemplateMetadata(t *testing.T) {
	got := extract(t, "gotmpl", `{{- define "app.labels" -}}`)
	want := models.ChunkMetadata{BlockType: "define", Hierarchy: "define:app.labels", LanguageID: "gotmpl"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestGithubActionsMetadata(t *testing.T) {
	r := NewRegistry()
	h, _ := r.HandlerFor("github_actions")

	tests := []struct {
		name string
		text string
		want models.ChunkMetadata
	}{
		{
			name: "step with name",
			text: "      - name: Run tests\n        run: go test ./...\n",
			want: models.ChunkMetadata{BlockType: "step", Hierarchy: "step:Run tests", LanguageID: "github_actions"},
		},
		{
			name: "step with uses only",
			text: "      - uses: actions/checkout@v4\n",
			want: models.ChunkMetadata{BlockType: "step", Hierarchy: "step:actions/checkout@v4", LanguageID: "github_actions"},
		},
		{
			name: "job key",
			text: "  build:\n    runs-on: ubuntu-latest\n",
			want: models.ChunkMetadata{BlockType: "job", Hierarchy: "job:build", LanguageID: "github_actions"},
		},
		{
			name: "top-level key",
			text: "jobs:\n",
			want: models.ChunkMetadata{BlockType: "jobs", Hierarchy: "jobs", LanguageID: "github_actions"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.ExtractMetadata(tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGitlabCIMetadata(t *testing.T) {
	r := NewRegistry()
	h, _ := r.HandlerFor("gitlab_ci")

	tests := []struct {
		name string
		text string
		want models.ChunkMetadata
	}{
		{
			name: "hidden job is a template",
			text: ".build-template:\n  script:\n    - make\n",
			want: models.ChunkMetadata{BlockType: "template", Hierarchy: "template:.build-template", LanguageID: "gitlab_ci"},
		},
		{
			name: "job",
			text: "deploy/production:\n  stage: deploy\n",
			want: models.ChunkMetadata{BlockType: "job", Hierarchy: "job:deploy/production", LanguageID: "gitlab_ci"},
		},
		{
			name: "reserved top-level key",
			text: "stages:\n  - build\n",
			want: models.ChunkMetadata{BlockType: "stages", Hierarchy: "stages", LanguageID: "gitlab_ci"},
		},
		{
			name: "job body key",
			text: "  script:\n    - make test\n",
			want: models.ChunkMetadata{BlockType: "job-key", Hierarchy: "job-key:script", LanguageID: "gitlab_ci"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.ExtractMetadata(tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDockerComposeMetadata(t *testing.T) {
	r := NewRegistry()
	h, _ := r.HandlerFor("docker_compose")

	got := h.ExtractMetadata("  db:\n    image: postgres:16\n")
	want := models.ChunkMetadata{BlockType: "service", Hierarchy: "service:db", LanguageID: "docker_compose"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got = h.ExtractMetadata("services:\n")
	want = models.ChunkMetadata{BlockType: "services", Hierarchy: "services", LanguageID: "docker_compose"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestKubernetesMetadata(t *testing.T) {
	r := NewRegistry()
	h, _ := r.HandlerFor("kubernetes")

	tests := []struct {
		name string
		text string
		want models.ChunkMetadata
	}{
		{
			name: "kind chunk reports the resource kind",
			text: "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: web\n",
			want: models.ChunkMetadata{BlockType: "Deployment", Hierarchy: "kind:Deployment", LanguageID: "kubernetes"},
		},
		{
			name: "top-level section",
			text: "spec:\n  replicas: 3\n",
			want: models.ChunkMetadata{BlockType: "spec", Hierarchy: "spec", LanguageID: "kubernetes"},
		},
		{
			name: "keyed list item",
			text: "    - name: web\n      image: nginx\n",
			want: models.ChunkMetadata{BlockType: "list-item", Hierarchy: "list-item:name", LanguageID: "kubernetes"},
		},
		{
			name: "nested key",
			text: "  containers:\n    - name: web\n",
			want: models.ChunkMetadata{BlockType: "nested-key", Hierarchy: "nested-key:containers", LanguageID: "kubernetes"},
		},
		{
			name: "document marker",
			text: "---\n",
			want: models.ChunkMetadata{BlockType: "document", Hierarchy: "document", LanguageID: "kubernetes"},
		},
		{
			name: "value continuation",
			text: "      /bin/sh -c sleep 3600\n",
			want: models.ChunkMetadata{BlockType: "value", Hierarchy: "value", LanguageID: "kubernetes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.ExtractMetadata(tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHelmValuesMetadata(t *testing.T) {
	r := NewRegistry()
	h, _ := r.HandlerFor("helm_values")

	got := h.ExtractMetadata("## @section Image parameters\nimage:\n  repository: nginx\n")
	want := models.ChunkMetadata{BlockType: "section", Hierarchy: "section:Image parameters", LanguageID: "helm_values"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got = h.ExtractMetadata("replicaCount: 3\n")
	if got.BlockType != "key" || got.Hierarchy != "replicaCount" {
		t.Errorf("top-level key classified as %+v", got)
	}
}

func TestHelmTemplateMetadata(t *testing.T) {
	r := NewRegistry()
	h, _ := r.HandlerFor("helm_template")

	got := h.ExtractMetadata(`{{- define "app.fullname" -}}`)
	want := models.ChunkMetadata{BlockType: "define", Hierarchy: "define:app.fullname", LanguageID: "helm_template"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got = h.ExtractMetadata("{{- if .Values.ingress.enabled }}\n")
	want = models.ChunkMetadata{BlockType: "if", Hierarchy: "if", LanguageID: "helm_template"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got = h.ExtractMetadata("apiVersion: v1\nkind: Service\nmetadata:\n  name: web\n")
	want = models.ChunkMetadata{BlockType: "Service", Hierarchy: "kind:Service", LanguageID: "helm_template"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
