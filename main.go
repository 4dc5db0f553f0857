// Command reviewboard is the entry point of the application. It loads
// configuration, connects to the database, runs migrations, wires the
// services and handlers, and serves the HTTP surface with graceful
// shutdown.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/reviewboard-go/apperror"
	"github.com/user/reviewboard-go/auth"
	"github.com/user/reviewboard-go/config"
	"github.com/user/reviewboard-go/db"
	"github.com/user/reviewboard-go/logger"
	"github.com/user/reviewboard-go/metrics"
	"github.com/user/reviewboard-go/render"
	"github.com/user/reviewboard-go/reviews"
	"github.com/user/reviewboard-go/session"
	"github.com/user/reviewboard-go/users"
	"github.com/user/reviewboard-go/web"
)

func main() {
	logger.SetupDefault(os.Stdout)

	// .env is a development convenience; in production the environment is
	// set directly.
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or error loading it", slog.String("error", err.Error()))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		slog.Error("failed to create database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnableExtensions(pool); err != nil {
		slog.Error("failed to enable extensions", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		slog.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessionStore := session.NewPostgresStore(pool)
	sessionManager := session.NewManager(sessionStore, cfg.Session.TTL, cfg.Session.CookieSecure)

	accountService := users.NewPostgresAccountService(pool)
	reviewService := reviews.NewPostgresReviewService(pool)

	authHandlers := auth.NewHandlers(accountService, sessionManager, renderer, cfg.Policy)
	userHandlers := users.NewHandlers(accountService, renderer, cfg.Policy)
	reviewHandlers := reviews.NewHandlers(reviewService, cfg.Policy)

	loginLimiter := web.NewLoginLimiter(cfg.Server.LoginRatePerSec, cfg.Server.LoginBurst)
	defer loginLimiter.Stop()

	collector := metrics.NewCollector()

	r := chi.NewRouter()

	// Global middleware. Chi requires all middleware to be registered
	// before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(collector.Middleware())

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that keeps the JSON error contract.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					slog.Error("panic in handler", slog.Any("panic", rvr))
					writeError(ww, apperror.NewInternalError("Internal Server Error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/metrics", collector.Handler().ServeHTTP)

	// Public pages. Callers who already hold a session are bounced to the
	// feed.
	r.Group(func(r chi.Router) {
		r.Use(web.RedirectIfAuthenticated(sessionStore))
		r.Get("/", authHandlers.HandleHome())
		r.Get("/login", authHandlers.HandleLoginPage())
		r.Get("/signup", authHandlers.HandleSignupPage())
		r.Post("/signup", authHandlers.HandleSignup())
	})

	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Middleware())
		r.Post("/login", authHandlers.HandleLogin())
	})
	r.Get("/logout", authHandlers.HandleLogout())

	// Guarded pages: redirect to home when no session is present.
	r.Group(func(r chi.Router) {
		r.Use(web.RequirePage(sessionStore))
		r.Get("/feed", authHandlers.HandleFeed())
		r.Get("/userinfo/{id}", userHandlers.HandleUserInfoPage())
		r.Get("/editprofile", userHandlers.HandleEditProfilePage())
		r.Post("/editprofile", userHandlers.HandleEditProfile())
	})

	// Guarded API routes: 401 JSON when no session is present.
	r.Group(func(r chi.Router) {
		r.Use(web.RequireAPI(sessionStore))
		r.Post("/userinfo/{id}", userHandlers.HandleUserInfoJSON())
		reviewHandlers.RegisterRoutes(r)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"Failed to encode error response"}`, http.StatusInternalServerError)
	}
}
