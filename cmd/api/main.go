package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/pflag"

	"github.com/VioletCranberry/cocosearch/internal/config"
	"github.com/VioletCranberry/cocosearch/internal/core"
	"github.com/VioletCranberry/cocosearch/internal/embed"
	"github.com/VioletCranberry/cocosearch/internal/search"
	"github.com/VioletCranberry/cocosearch/internal/store"
)

func main() {
	fs := pflag.NewFlagSet("cocosearch-api", pflag.ExitOnError)

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Str("embed_provider", cfg.EmbedProvider).Str("log_level", cfg.LogLevel).Msg("starting cocosearch api")

	clientConfig := &embed.ClientConfig{
		Provider:  embed.Provider(strings.ToLower(cfg.EmbedProvider)),
		Endpoint:  cfg.EmbedURL,
		Model:     cfg.EmbedModel,
		Dim:       cfg.Dim,
		APIKey:    cfg.APIKey,
		ProjectID: cfg.ProjectID,
		Location:  cfg.Location,
	}

	ctx := context.Background()
	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	client, err := embed.NewClient(ctx, clientConfig)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	logger.Info().Int("embedding_dim", client.Dim()).Str("embed_model", cfg.EmbedModel).Msg("embedding client initialized")

	expander, err := search.NewExpander()
	if err != nil {
		log.Fatalf("Failed to create context expander: %v", err)
	}
	svc := search.NewService(st, client, search.NewQueryCache(256), expander)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	mux.HandleFunc("/indexes", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		indexes, err := st.ListIndexes(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if indexes == nil {
			_, _ = w.Write([]byte("[]"))
			return
		}
		if err := json.NewEncoder(w).Encode(indexes); err != nil {
			http.Error(w, "Failed to encode indexes", 500)
		}
	})

	mux.HandleFunc("/indexes/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/indexes/"), "/")
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		switch r.Method {
		case http.MethodDelete:
			if err := st.DeleteIndex(ctx, name); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			meta, found, err := st.GetIndex(ctx, name)
			if err != nil {
				writeError(w, err)
				return
			}
			if !found {
				http.Error(w, "index not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(meta); err != nil {
				http.Error(w, "Failed to encode index", 500)
			}
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		q := r.URL.Query()

		params := search.Params{
			Query:      q.Get("q"),
			Index:      q.Get("index"),
			SymbolName: q.Get("symbol_name"),
			Hybrid:     search.HybridMode(q.Get("hybrid")),
		}
		if v := q.Get("k"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				params.Limit = n
			}
		}
		if v := q.Get("min_score"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				params.MinScore = &f
			}
		}
		if v := q.Get("language"); v != "" {
			params.Languages = strings.Split(v, ",")
		}
		if v := q.Get("symbol_type"); v != "" {
			params.SymbolTypes = strings.Split(v, ",")
		}

		res, err := svc.Search(r.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if res == nil {
			_, _ = w.Write([]byte("[]"))
		} else {
			for i := range res {
				if math.IsNaN(res[i].Score) || math.IsInf(res[i].Score, 0) {
					res[i].Score = 0
				}
			}
			if err := json.NewEncoder(w).Encode(res); err != nil {
				log.Printf("failed to encode response: %v", err)
				_, _ = w.Write([]byte("[]"))
			}
		}

		hlog.FromRequest(r).Info().Str("path", "/search").Str("q", params.Query).
			Str("index", params.Index).Dur("dur", time.Since(start)).Msg("served")
	})

	handler := hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(mux),
	)

	address := fmt.Sprintf(":%d", cfg.Port)
	s := &http.Server{Addr: address, Handler: handler}
	logger.Info().Str("addr", s.Addr).Msg("api server listening")
	log.Fatal(s.ListenAndServe())
}

// writeError maps core error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch core.KindOf(err) {
	case core.KindValidation:
		status = http.StatusBadRequest
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindInfrastructure:
		status = http.StatusBadGateway
	}
	var ce *core.Error
	msg := err.Error()
	if errors.As(err, &ce) {
		msg = ce.Msg
	}
	http.Error(w, msg, status)
}
