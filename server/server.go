package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tunedeck/cache"
	"tunedeck/config"
	"tunedeck/core/auth"
	"tunedeck/core/catalog"
	"tunedeck/db"
	"tunedeck/logger"
	"tunedeck/model"
	"tunedeck/repository"
	"tunedeck/storage"

	"github.com/gorilla/mux"
)

// Start wires every collaborator and runs the HTTP server until SIGINT or
// SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	// Object store
	minioStorage, err := storage.NewMinioStorage(cfg)
	if err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	// Catalog store
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseDB()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database", logger.ErrorField(err))
	}

	// Audit log rides on GORM, same database.
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.AuditEntry{}); err != nil {
		logger.Fatal("failed to migrate audit log", logger.ErrorField(err))
	}

	// Cache is best-effort: a dead Redis only disables invalidation.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, cache invalidation disabled", logger.ErrorField(err))
		cache.RedisClient = nil
	} else {
		defer cache.CloseRedis()
		logger.Info("successfully connected to Redis")
	}

	albumRepo := repository.NewMySQLAlbumRepository(db.DB)
	songRepo := repository.NewMySQLSongRepository(db.DB)
	auditRepo := repository.NewGormAuditRepository(db.GormDB)
	catalogCache := cache.NewCatalogCache(cache.RedisClient)

	pipeline := catalog.NewPipeline(albumRepo, songRepo, minioStorage, catalogCache, auditRepo)
	identity := auth.NewIdentityClient(cfg.UserServiceURL)
	apiHandler := NewAPIHandler(pipeline, identity, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/", welcomeHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/v1/album/new", apiHandler.AuthMiddleware(apiHandler.CreateAlbumHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/album/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteAlbumHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/song/new", apiHandler.AuthMiddleware(apiHandler.CreateSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/song/{id}", apiHandler.AuthMiddleware(apiHandler.SetSongThumbnailHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/song/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteSongHandler)).Methods(http.MethodDelete)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("admin service listening", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

// corsMiddleware mirrors the gateway-facing CORS policy.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, token")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Welcome to the Admin Service!"))
}
