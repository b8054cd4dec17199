package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Specification struct {
	Database string `yaml:"database" envconfig:"DB_URL"`

	EmbedProvider string `yaml:"embedProvider" envconfig:"EMBED_PROVIDER"`
	EmbedURL      string `yaml:"embedURL" envconfig:"EMBED_URL"`
	EmbedModel    string `yaml:"embedModel" envconfig:"EMBED_MODEL"`
	Dim           int    `yaml:"embedDim" envconfig:"EMBED_DIM"`
	APIKey        string `yaml:"providerApiKey" envconfig:"PROVIDER_API_KEY"`
	ProjectID     string `yaml:"providerProjectID" envconfig:"PROVIDER_PROJECT_ID"`
	Location      string `yaml:"providerLocation" envconfig:"PROVIDER_LOCATION"`

	IndexName string `yaml:"indexName" split_words:"true"`
	RepoRoot  string `yaml:"repoRoot" split_words:"true"`

	ChunkSize    int `yaml:"chunkSize" split_words:"true"`
	ChunkOverlap int `yaml:"chunkOverlap" split_words:"true"`
	Workers      int `yaml:"workers"`

	LogLevel string `yaml:"logLevel" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`

	flags *pflag.FlagSet `ignored:"true"`
}

const envPrefix = "COCOSEARCH"

func (s *Specification) Usage() {
	fmt.Fprint(os.Stderr, s.flags.FlagUsages())
}

// Load => defaults < YAML < env < flags.
// configPath may be ""; if so we auto-discover.
func Load(configPath string, fs *pflag.FlagSet) (Specification, error) {
	var cfg Specification

	// set defaults (lowest precedence)
	setDefaults(&cfg)
	bindFlags(fs, &cfg)

	// config file
	path := configPath
	if path == "" {
		if v := os.Getenv(envPrefix + "_CONFIG"); v != "" {
			path = v
		} else {
			for _, cand := range []string{
				"config/cocosearch.yaml",
				"config/config.yaml",
				"./cocosearch.yaml",
				"./config.yaml",
			} {
				if fileExists(cand) {
					path = cand
					break
				}
			}
		}
	}

	if path != "" {
		if !fileExists(path) {
			return Specification{}, fmt.Errorf("config file not found: %s", path)
		}
		if err := loadYAML(path, &cfg); err != nil {
			return Specification{}, fmt.Errorf("load yaml %s: %w", path, err)
		}
	}

	// env overrides config file
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Specification{}, fmt.Errorf("env override: %w", err)
	}

	// flags override everything
	if err := fs.Parse(os.Args[1:]); err != nil {
		return Specification{}, err
	}
	applyChangedFlags(fs, &cfg)

	// Minimal sanity: the database is the one hard requirement; a missing
	// embedding endpoint just falls back to the localhost default.
	if strings.TrimSpace(cfg.Database) == "" {
		return Specification{}, fmt.Errorf("COCOSEARCH_DB_URL is required (env/file/flag)")
	}
	if strings.TrimSpace(cfg.EmbedURL) == "" {
		cfg.EmbedURL = "http://localhost:11434"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// ---------- helpers ----------

func loadYAML(path string, into any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, into)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func bindFlags(fs *pflag.FlagSet, c *Specification) {
	fs.String("config", "", "Path to config file")

	// If --config is provided on the command line, capture it now so
	// config discovery (which runs before flags.Parse) can use it.
	for i, a := range os.Args {
		if a == "--config" {
			if i+1 < len(os.Args) && !strings.HasPrefix(os.Args[i+1], "-") {
				_ = os.Setenv(envPrefix+"_CONFIG", os.Args[i+1])
			}
		} else if strings.HasPrefix(a, "--config=") {
			parts := strings.SplitN(a, "=", 2)
			if len(parts) == 2 {
				_ = os.Setenv(envPrefix+"_CONFIG", parts[1])
			}
		}
	}

	fs.String("db-url", c.Database, "Database URL (DSN)")

	fs.String("embed-provider", c.EmbedProvider, "Embedding provider (http, google, stub)")
	fs.String("embed-url", c.EmbedURL, "Embedding service endpoint")
	fs.String("embed-model", c.EmbedModel, "Embedding model identifier")
	fs.Int("embed-dim", c.Dim, "Embedding dimensionality")
	fs.String("provider-api-key", c.APIKey, "Provider API key (google)")
	fs.String("provider-project-id", c.ProjectID, "Provider project ID (google)")
	fs.String("provider-location", c.Location, "Provider location/region (google)")

	fs.String("index", c.IndexName, "Index name")
	fs.String("repo-root", c.RepoRoot, "Path to the repository to index")

	fs.Int("chunk-size", c.ChunkSize, "Maximum chunk size in bytes")
	fs.Int("chunk-overlap", c.ChunkOverlap, "Chunk overlap in bytes")
	fs.Int("workers", c.Workers, "Indexing worker count (0 = CPU count; capped at 8)")

	fs.String("log-level", c.LogLevel, "Log level (debug|info|warn|error)")
	fs.Int("port", c.Port, "API server port")

	// Used later for usage/help
	copied := pflag.NewFlagSet("temp", pflag.ContinueOnError)
	*copied = *fs
	c.flags = copied
}

func applyChangedFlags(fs *pflag.FlagSet, c *Specification) {
	setStr := func(name string, dst *string) {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			*dst = v
		}
	}

	setStr("db-url", &c.Database)

	setStr("embed-provider", &c.EmbedProvider)
	setStr("embed-url", &c.EmbedURL)
	setStr("embed-model", &c.EmbedModel)
	setInt("embed-dim", &c.Dim)
	setStr("provider-api-key", &c.APIKey)
	setStr("provider-project-id", &c.ProjectID)
	setStr("provider-location", &c.Location)

	setStr("index", &c.IndexName)
	setStr("repo-root", &c.RepoRoot)

	setInt("chunk-size", &c.ChunkSize)
	setInt("chunk-overlap", &c.ChunkOverlap)
	setInt("workers", &c.Workers)

	setStr("log-level", &c.LogLevel)
	setInt("port", &c.Port)
}

func setDefaults(c *Specification) {
	c.LogLevel = "info"
	c.RepoRoot = "."
	c.EmbedProvider = "http"
	c.EmbedURL = "http://localhost:11434"
	c.EmbedModel = "nomic-embed-text"
	c.Dim = 768
	c.ChunkSize = 1500
	c.ChunkOverlap = 200
	c.Workers = 0
	c.Location = "us-central1"
	c.Port = 8080
}
