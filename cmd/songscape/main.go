package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/sydlexius/songscape/internal/api"
	"github.com/sydlexius/songscape/internal/api/middleware"
	"github.com/sydlexius/songscape/internal/artist"
	"github.com/sydlexius/songscape/internal/config"
	"github.com/sydlexius/songscape/internal/corpus"
	"github.com/sydlexius/songscape/internal/explore"
	"github.com/sydlexius/songscape/internal/logging"
	"github.com/sydlexius/songscape/internal/metrics"
	"github.com/sydlexius/songscape/internal/provider"
	"github.com/sydlexius/songscape/internal/provider/lastfm"
	"github.com/sydlexius/songscape/internal/recommend"
	"github.com/sydlexius/songscape/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("SONGSCAPE_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up structured logging via the logging Manager
	logManager, logger := logging.NewManager(cfg.Logging)
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	logger.Info("starting songscape",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("logging", cfg.Logging.String()))

	// Load the corpus; the server never starts without it
	c, err := corpus.Load(corpus.Paths{
		Metadata: cfg.Data.MetadataPath,
		Lyrics:   cfg.Data.LyricsPath,
		Graph:    cfg.Data.GraphPath,
	})
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	stats := c.Stats()
	metrics.CorpusSize.WithLabelValues("artists").Set(float64(stats.Artists))
	metrics.CorpusSize.WithLabelValues("lyrics").Set(float64(stats.Lyrics))
	metrics.CorpusSize.WithLabelValues("graph_nodes").Set(float64(stats.GraphNodes))
	metrics.CorpusSize.WithLabelValues("graph_edges").Set(float64(stats.GraphEdges))
	logger.Info("corpus loaded",
		slog.Int("artists", stats.Artists),
		slog.Int("lyrics", stats.Lyrics),
		slog.Int("graph_nodes", stats.GraphNodes),
		slog.Int("graph_edges", stats.GraphEdges),
		slog.Bool("directed", c.Graph().Directed()))

	// Initialize services
	limiter := provider.NewRateLimiterMap(map[provider.ProviderName]float64{
		provider.NameLastFM: cfg.LastFM.RequestsPerSecond,
	})
	gateway := lastfm.New(lastfm.Config{
		APIKey:       cfg.LastFM.APIKey,
		BaseURL:      cfg.LastFM.BaseURL,
		Timeout:      cfg.LastFM.Timeout,
		SimilarLimit: cfg.LastFM.SimilarLimit,
	}, limiter, logger)
	if !gateway.Configured() {
		logger.Warn("Last.fm API key not set; remote artist data disabled")
	}

	explorer := explore.NewService(
		artist.NewResolver(c.Names(), cfg.Resolver.FuzzyCutoff),
		c,
		recommend.NewEngine(c.Graph()),
		gateway,
		cfg.Recommend.TopN,
		logger,
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := api.NewRouter(api.RouterDeps{
		Explorer:      explorer,
		Corpus:        c,
		ArtistLimiter: middleware.NewClientRateLimiter(ctx, cfg.Server.ClientRequestsPerMinute),
		Logger:        logger,
		StaticDir:     cfg.Server.StaticDir,
		CORSOrigins:   cfg.Server.CORSOrigins,

		ContentSecurityPolicy: cfg.Server.ContentSecurityPolicy,
	})
	addr := ":" + strconv.Itoa(cfg.Server.Port)

	// Supervise the HTTP server and the config watcher
	sup := suture.New("songscape", suture.Spec{
		EventHook:        (&sutureslog.Handler{Logger: logger}).MustHook(),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          15 * time.Second,
	})
	sup.Add(api.NewServer(addr, router.Handler(), logger))

	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		if next.Logging == logManager.Config() {
			return
		}
		logManager.Reconfigure(next.Logging)
		logger.Info("logging reconfigured", slog.String("logging", next.Logging.String()))
	}, logger)
	if err != nil {
		logger.Warn("config file watching disabled", slog.String("error", err.Error()))
	} else {
		sup.Add(watcher)
	}

	err = sup.Serve(ctx)

	unstopped, _ := sup.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn("service failed to stop", slog.String("service", svc.Name))
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	logger.Info("stopped")
	return nil
}
