package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/taskforge/taskforge-backend/internal/config"
	"github.com/taskforge/taskforge-backend/internal/database"
	"github.com/taskforge/taskforge-backend/internal/handlers"
	"github.com/taskforge/taskforge-backend/internal/middleware"
	"github.com/taskforge/taskforge-backend/internal/repository"
	"github.com/taskforge/taskforge-backend/internal/routes"
	"github.com/taskforge/taskforge-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Println("⚠️  WARNING: JWT_SECRET not set, using the default development secret")
	}

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer db.Disconnect()

	if err := db.EnsureIndexes(context.Background()); err != nil {
		log.Fatal("Failed to ensure MongoDB indexes: ", err)
	}
	log.Println("✅ MongoDB indexes ensured")

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer rdb.Close()

	// Wire stores, services, handlers
	userRepo := repository.NewMongoUserRepository(db.DB)
	taskRepo := repository.NewMongoTaskRepository(db.DB)

	userService := services.NewUserService(userRepo, taskRepo)
	tokenService := services.NewTokenService(cfg.JWTSecret, userRepo)
	avatarService := services.NewAvatarService(userRepo)
	taskService := services.NewTaskService(taskRepo)

	auth := middleware.NewAuth(tokenService, userRepo)
	userHandler := handlers.NewUserHandler(userService, tokenService)
	avatarHandler := handlers.NewAvatarHandler(userService, avatarService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: security headers + login rate limit. Everywhere: Redis-based per-IP limit.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, login rate limiting)")
	}
	r.Use(middleware.RateLimit(rdb))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, auth, userHandler, avatarHandler, taskHandler)

	log.Printf("🚀 Taskforge backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
