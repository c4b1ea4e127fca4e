// Entry point of the tareas application. Loads configuration, connects to
// the database, runs migrations, wires services and handlers, and serves
// both HTTP surfaces (the session-cookie web routes and the JWT JSON API)
// on one chi router with graceful shutdown.
//
// @title Tareas API
// @version 1.0
// @description Personal task manager API: session- and token-authenticated CRUD and search over per-user tasks.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/tareas-go/apperror"
	"github.com/user/tareas-go/auth"
	"github.com/user/tareas-go/background"
	"github.com/user/tareas-go/config"
	"github.com/user/tareas-go/db"
	_ "github.com/user/tareas-go/docs" // Generated Swagger docs
	"github.com/user/tareas-go/sessions"
	"github.com/user/tareas-go/tasks"
	"github.com/user/tareas-go/users"
	"github.com/user/tareas-go/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.EnableExtensions(pool); err != nil {
		log.Fatalf("Failed to enable extensions: %v", err)
	}

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Session store shared by the cookie surface and the background sweeper.
	sessionStore := sessions.NewMemoryStore(cfg.Session.TTL)
	sweeperStopChan := make(chan struct{})
	sweeperWG := background.StartSessionSweeper(sessionStore, cfg.Session.SweepInterval, sweeperStopChan)
	log.Println("Session sweeper started.")

	credentialService := auth.NewPGService(pool)
	tokenIssuer := auth.NewTokenIssuer(*cfg.Auth)
	authHandlers := auth.NewHandlers(credentialService, tokenIssuer)

	userService := users.NewService(credentialService)
	userHandlers := users.NewHandlers(userService)

	taskService := tasks.NewPGService(pool)
	taskHandlers := tasks.NewHandlers(taskService)

	webHandlers := web.NewHandlers(credentialService, sessionStore, taskService, cfg.Session.CookieName)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that reports through the apperror envelope instead of
	// a bare 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// JSON API surface.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/refresh", authHandlers.HandleRefreshToken())
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		r.Get("/me", userHandlers.HandleGetProfile())
	})

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		taskHandlers.RegisterRoutes(r)
	})

	// Browser surface with cookie sessions, mounted at the root.
	webHandlers.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(sweeperStopChan)
	sweeperWG.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware, kept
// separate from the handler packages to avoid import cycles.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"Failed to encode error response"}`, http.StatusInternalServerError)
	}
}
