package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"cinetrack/api"
	"cinetrack/config"
	"cinetrack/handlers"
	"cinetrack/internal/auth"
	"cinetrack/internal/database"
	"cinetrack/internal/i18n"
	"cinetrack/internal/logging"
	"cinetrack/services/browse"
	"cinetrack/services/metadata"
	"cinetrack/services/recommendations"
	"cinetrack/services/watchlist"
	"cinetrack/utils"
)

func main() {
	configFlag := flag.String("config", "", "path to settings.json (overrides "+config.EnvConfigPath+")")
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 cinetrack backend starting...")

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(config.ResolvePath(*configFlag))
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	logCloser, err := logging.Setup(settings.Log)
	if err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	} else {
		defer logCloser.Close()
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The database is the only dependency allowed to abort startup.
	db, err := database.Open(ctx, database.Config{
		Driver:          settings.Database.Driver,
		DatabasePath:    settings.Database.Path,
		DSN:             settings.Database.DSN,
		ConnectAttempts: uint(settings.Database.ConnectAttempts),
		ConnectDelay:    settings.Database.ConnectDelay(),
	})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	fmt.Printf("✅ Database ready (%s)\n", db.Driver())

	catalog := metadata.NewService(settings.Metadata, nil)
	if !catalog.Configured() {
		fmt.Println("⚠️  No TMDB API key configured; catalog routes will fail until " + config.EnvTMDBAPIKey + " is set")
	}

	watchState := watchlist.NewService(db)
	recs := recommendations.NewService(catalog, watchState, recommendations.Options{
		MaxResults:   settings.Recommendations.MaxResults,
		LikedSources: settings.Recommendations.LikedSources,
		PerSource:    settings.Recommendations.PerSource,
		FetchTimeout: settings.Recommendations.FetchTimeout(),
	})
	feeds, err := browse.NewService(catalog, watchState, settings.Browse.MaxFeeds)
	if err != nil {
		log.Fatalf("failed to create browse service: %v", err)
	}

	messages := i18n.New(settings.Server.Locale)

	// Construct router
	var r *mux.Router = utils.NewRouter(settings.Server.AllowedOrigins...)
	api.Register(r, api.Handlers{
		Watchlist:       handlers.NewWatchlistHandler(watchState, catalog.Images(), messages),
		Recommendations: handlers.NewRecommendationsHandler(recs, messages),
		Catalog:         handlers.NewCatalogHandler(catalog, messages),
		Browse:          handlers.NewBrowseHandler(feeds, messages),
	},
		auth.NewVerifier(settings.Auth.JWTSecret),
		api.NewIPRateLimiterFromSettings(ctx, settings.RateLimit),
		messages,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	cancel()

	log.Println("✅ Shutdown complete")
}
