package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/medrates/backend/src/config"
	"github.com/username/medrates/backend/src/database"
	"github.com/username/medrates/backend/src/handlers"
	"github.com/username/medrates/backend/src/logger"
	"github.com/username/medrates/backend/src/processors"
	"github.com/username/medrates/backend/src/security"
	"github.com/username/medrates/backend/src/services"
	"golang.org/x/time/rate"
)

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				logger.L.Warn("Rate limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"remoteAddr", r.RemoteAddr)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == allowedOrigin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
				w.Header().Set("Access-Control-Expose-Headers", "ETag")
			} else if origin == "" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method == "OPTIONS" {
				logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Medrates backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(config.Cfg.ResultCacheExpiry, config.Cfg.ResultCacheCleanup)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)

	ratesService := services.NewRatesService(
		services.NewSQLiteRecordSource(database.DB),
		processors.NewFilterEngine(),
		processors.NewDeduplicator(),
		processors.NewSortEngine(),
		processors.NewAggregator(),
		resultCache,
	)
	datasetService := services.NewDatasetService(
		database.DB,
		config.Cfg.DatasetSourceURL,
		config.Cfg.DatasetFetchTimeout,
		ratesService,
	)

	ratesHandler := handlers.NewRatesHandler(ratesService, datasetService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	requireAuth := handlers.AuthMiddleware(authService)
	applyAuth := func(handler http.HandlerFunc) http.Handler {
		return requireAuth(handler)
	}

	apiRouter.Handle("GET /api/rates", applyAuth(ratesHandler.HandleRates))
	apiRouter.Handle("GET /api/rates/options", applyAuth(ratesHandler.HandleOptions))
	apiRouter.Handle("GET /api/rates/table", applyAuth(ratesHandler.HandleTable))
	apiRouter.Handle("GET /api/rates/history", applyAuth(ratesHandler.HandleHistory))
	apiRouter.Handle("GET /api/rates/comparison", applyAuth(ratesHandler.HandleComparison))
	apiRouter.Handle("POST /api/admin/refresh-dataset", applyAuth(ratesHandler.HandleRefreshDataset))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "MEDRATES Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	limiter := rate.NewLimiter(rate.Every(config.Cfg.RateLimitInterval), config.Cfg.RateLimitBurst)
	finalHandler := enableCORS(config.Cfg.AllowedOrigin)(rateLimitMiddleware(limiter)(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
