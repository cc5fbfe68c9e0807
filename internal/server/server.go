// Package server is the composition root: it opens the database, builds the
// services and handlers, mounts the routes and runs the HTTP server until
// SIGINT or SIGTERM.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/creator-lounge/internal/auth"
	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/handler"
	"github.com/sakif/creator-lounge/internal/middleware"
	sqliteRepo "github.com/sakif/creator-lounge/internal/repository/sqlite"
	"github.com/sakif/creator-lounge/internal/service"
)

// Server owns the router and the database connection, which is closed when
// Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires every layer. store may be nil, in which case the upload routes
// are not mounted. providers defaults to the registry built from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, store service.ObjectStore, providers *auth.Registry) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	if providers == nil {
		providers = auth.NewRegistryFromConfig(cfg)
	}

	if err := s.setupRoutes(ctx, store, providers); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes
//
//	GET    /health
//	GET    /auth/providers
//	POST   /auth/logout
//	GET    /auth/{provider}[?linkToken=]
//	GET    /auth/{provider}/callback
//
//	public (optional auth): channels, faqs, hashtags, post and comment reads
//	protected (bearer JWT): everything that reads "me" or writes
func (s *Server) setupRoutes(ctx context.Context, store service.ObjectStore, providers *auth.Registry) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTExpiresIn)
	if err != nil {
		return err
	}

	channelService := service.NewChannelService(s.db, s.db, s.logger)
	if err := channelService.SeedChannels(ctx); err != nil {
		return err
	}
	supportService := service.NewSupportService(s.db, s.db, s.logger)
	if err := supportService.SeedFAQs(ctx); err != nil {
		return err
	}

	authService := service.NewAuthService(s.db, channelService, tokens, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	postService := service.NewPostService(s.db, channelService, s.logger)
	commentService := service.NewCommentService(s.db, s.db, channelService, s.logger)
	hashtagService := service.NewHashtagService(s.db, s.logger)
	reportService := service.NewReportService(s.db, s.db, s.db, s.db, s.logger)
	blockService := service.NewBlockService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(providers, authService, s.config.FrontendURL,
		s.config.IsProduction(), s.config.JWTExpiresIn, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	channelHandler := handler.NewChannelHandler(channelService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	hashtagHandler := handler.NewHashtagHandler(hashtagService, s.logger)
	moderationHandler := handler.NewModerationHandler(reportService, blockService, s.logger)
	supportHandler := handler.NewSupportHandler(supportService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.AllowedOrigins))

	s.router.Get("/health", handler.HandleHealth(s.db))

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/providers", authHandler.HandleProviders)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/{provider}", authHandler.HandleLogin)
		r.Get("/{provider}/callback", authHandler.HandleCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.config.RateLimitPerMinute, s.logger))

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))

			r.Get("/channels", channelHandler.HandleList)
			r.Get("/channels/{id}", channelHandler.HandleGet)
			r.Get("/faqs", supportHandler.HandleFAQs)
			r.Get("/hashtags/popular", hashtagHandler.HandlePopular)
			r.Get("/hashtags/search", hashtagHandler.HandleSearch)
			r.Get("/posts", postHandler.HandleList)
			r.Get("/posts/{id}", postHandler.HandleGet)
			r.Get("/posts/{id}/comments", commentHandler.HandleList)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(middleware.ActiveUser(s.db, s.logger))

			r.Get("/me", userHandler.HandleMe)
			r.Patch("/me", userHandler.HandleUpdateNickname)
			r.Delete("/me", userHandler.HandleWithdraw)
			r.Get("/users/{id}", userHandler.HandleGetProfile)

			r.Get("/channels/accessible", channelHandler.HandleAccessible)
			r.Get("/channels/my-access", channelHandler.HandleMyAccess)
			r.Post("/channels/refresh-access", channelHandler.HandleRefreshAccess)
			r.Get("/channels/{id}/access", channelHandler.HandleCheckAccess)

			r.Post("/posts", postHandler.HandleCreate)
			r.Patch("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Post("/posts/{id}/like", postHandler.HandleToggleLike)
			r.Post("/posts/{id}/comments", commentHandler.HandleCreate)

			r.Patch("/comments/{id}", commentHandler.HandleUpdate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)
			r.Post("/comments/{id}/like", commentHandler.HandleToggleLike)

			r.Post("/reports", moderationHandler.HandleReport)
			r.Get("/reports/me", moderationHandler.HandleMyReports)
			r.Get("/blocks", moderationHandler.HandleListBlocks)
			r.Post("/blocks/{userId}", moderationHandler.HandleBlock)
			r.Delete("/blocks/{userId}", moderationHandler.HandleUnblock)

			r.Post("/inquiries", supportHandler.HandleCreateInquiry)
			r.Get("/inquiries", supportHandler.HandleListInquiries)
			r.Get("/inquiries/{id}", supportHandler.HandleGetInquiry)
			r.Post("/inquiries/{id}/answer", supportHandler.HandleAnswer)

			if store != nil {
				uploadService := service.NewUploadService(store, s.config.S3.MaxUploadBytes, s.config.S3.PresignTTL, s.logger)
				uploadHandler := handler.NewUploadHandler(uploadService, s.config.S3.MaxUploadBytes, s.logger)
				r.Post("/uploads", uploadHandler.HandleUpload)
				r.Post("/uploads/presign", uploadHandler.HandlePresign)
			}
		})
	})

	if store == nil {
		s.logger.Warn("object storage not configured, upload routes disabled")
	}
	s.logger.Info("routes ready", slog.Any("providers", providers.Names()))
	return nil
}

// Start serves until a shutdown signal, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.AppEnv),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
