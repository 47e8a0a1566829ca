package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/vision-assist/internal/assist"
	"github.com/ayush/vision-assist/internal/auth"
	"github.com/ayush/vision-assist/internal/config"
	"github.com/ayush/vision-assist/internal/middleware"
	"github.com/ayush/vision-assist/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database(cfg.MongoDB)
	users := store.NewMongoUserStore(mongoDB, cfg.UserCollection)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()

	// ── MinIO ────────────────────────────────────────────────
	audioStore, err := store.NewAudioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── User manager + key validation cache ──────────────────
	manager := auth.NewManager(users, cfg.APIKeySecret)
	validator := auth.NewCachedValidator(manager, rdb)

	// ── Upstream AI clients ──────────────────────────────────
	var vision assist.Describer
	switch cfg.VisionBackend {
	case "moondream":
		vision = assist.NewMoondreamClient(cfg.MoondreamKey)
	default:
		vision = assist.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	sttClient := assist.NewWhisperClient(cfg.STTServiceURL)
	ttsClient := assist.NewSpeechClient(cfg.TTSServiceURL)

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(manager, validator)
	assistHandler := assist.NewHandler(vision, sttClient, ttsClient, audioStore)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Liveness probe
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Account routes (public; update/delete re-authenticate in the body)
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/account/update", authHandler.UpdateAccount)
	r.Post("/account/delete", authHandler.DeleteAccount)

	// AI routes (protected by API key)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(validator))
		r.Post("/transcribe", assistHandler.Transcribe)
		r.Post("/query", assistHandler.Query)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
