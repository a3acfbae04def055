package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"voxcollect/cache"
	"voxcollect/config"
	"voxcollect/db"
	"voxcollect/logger"
	"voxcollect/repository"
	"voxcollect/storage"
)

// Start initializes the backing services and runs the collection server
// until an interrupt arrives.
func Start() {
	cfg := config.Load()

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseDB()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	audioStore, err := storage.NewMinioStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize object storage", logger.ErrorField(err))
	}

	promptRepo := repository.NewPromptRepository(db.DB)
	uttRepo := repository.NewUtteranceRepository(db.DB)
	tokens := cache.NewRedisTokenStore(db.RedisClient, cfg.UploadLinkSecret, cfg.UploadLinkTTL)

	handler := NewAPIHandler(promptRepo, uttRepo, audioStore, tokens, cfg)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      newRouter(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopWatcher := make(chan struct{})
	if cfg.PromptSeedFile != "" {
		go newPromptWatcher(cfg.PromptSeedFile, promptRepo).run(stopWatcher)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("collection server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")
	close(stopWatcher)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

// newRouter wires the API routes. Split out so handler tests can run
// against the exact production routing.
func newRouter(handler *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/api/prompt", handler.NextPromptHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/prompt", handler.CreatePromptHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/prompt/all", handler.ResetPromptsHandler).Methods(http.MethodPost)

	router.HandleFunc("/blobstore-utterance-upload-link", handler.UploadLinkHandler).Methods(http.MethodGet)
	router.HandleFunc("/upload-utterance/{token}", handler.UploadUtteranceHandler).Methods(http.MethodPost)

	hub := newWaveHub()
	router.HandleFunc("/ws/wave", handler.WaveSocketHandler(hub))

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
