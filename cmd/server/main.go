// The server command exposes the TF-IDF search engine over HTTP. The
// index is built once at startup from the configured corpus directory;
// queries are served from the cached document vectors, optionally through
// a Redis result cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vectorspace/docsearch/internal/cache"
	"github.com/vectorspace/docsearch/internal/corpus"
	"github.com/vectorspace/docsearch/internal/engine"
	"github.com/vectorspace/docsearch/internal/index"
	"github.com/vectorspace/docsearch/internal/server"
	"github.com/vectorspace/docsearch/pkg/config"
	"github.com/vectorspace/docsearch/pkg/health"
	"github.com/vectorspace/docsearch/pkg/logger"
	"github.com/vectorspace/docsearch/pkg/metrics"
	"github.com/vectorspace/docsearch/pkg/middleware"
	pkgredis "github.com/vectorspace/docsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "corpus_dir", cfg.Corpus.Dir)

	docs, err := corpus.LoadDir(cfg.Corpus.Dir)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	stopWords, err := corpus.LoadStopWords(cfg.Corpus.StopWordsFile)
	if err != nil {
		slog.Error("failed to load stop words", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	buildStart := time.Now()
	idx, err := index.Build(context.Background(), docs, stopWords)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}
	if m != nil {
		m.DocsIndexed.Set(float64(idx.NumDocs()))
		m.VocabularySize.Set(float64(idx.VocabularySize()))
		m.IndexBuildSeconds.Set(time.Since(buildStart).Seconds())
	}
	eng := engine.New(idx, cfg.Search.TopK, m)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if idx.NumDocs() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents indexed", idx.NumDocs()),
			}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: "empty corpus"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusUp, Message: "cache disabled"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.New(eng, queryCache, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents", h.Document)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics server listening", "addr", addr)
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, metricsMux); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}
