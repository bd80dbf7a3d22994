package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faretrack-service/internal/infrastructure/config"
	"faretrack-service/internal/infrastructure/persistence"
	"faretrack-service/internal/interface/httpapi"
	adapters "faretrack-service/internal/interface/repository"
	"faretrack-service/internal/usecase"
	"faretrack-service/pkg/logger"
	"faretrack-service/pkg/metrics"
	"faretrack-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	defer log.Sync()
	log.Info("Starting FareTrack Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up PostgreSQL connection and migrate the pipeline tables
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI,
		&adapters.FlightSearches{},
		&adapters.Flights{},
		&adapters.PriceHistory{},
	)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up MongoDB connection for the raw offer archive
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	mongoDB := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up repositories
	searchRepo := adapters.NewGormFlightSearchRepository(gormDB)
	flightRepo := adapters.NewGormFlightRepository(gormDB)
	historyRepo := adapters.NewGormPriceHistoryRepository(gormDB)
	offerArchive := adapters.NewMongoOfferArchive(mongoDB)

	// Set up the region switcher and fare provider
	switcher := adapters.NewVPNRegionSwitcher(cfg.VPNEndpoint, cfg.VPNToken, log)
	offerParser := utils.NewOfferParser(log)
	provider := adapters.NewSkyscannerProvider(cfg.ProviderBaseURL, cfg.ProviderAPIToken, offerParser, log)

	// Set up the pipeline
	appMetrics := metrics.NewMetrics("faretrack")
	aggregator := usecase.NewSearchAggregator(
		searchRepo,
		flightRepo,
		historyRepo,
		offerArchive,
		provider,
		switcher,
		cfg.SearchRegions,
		cfg.SearchTimeout,
		appMetrics,
		log,
	)
	predictor := usecase.NewPricePredictor(flightRepo, historyRepo, appMetrics, log)
	analyzer := usecase.NewPatternAnalyzer(flightRepo, historyRepo, log)

	// Set up HTTP server
	mux := http.NewServeMux()
	httpapi.NewHandler(aggregator, predictor, analyzer, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop in-flight searches

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("FareTrack Service stopped")
}
