package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "leadcrm/docs"
	"leadcrm/internal/config"
	"leadcrm/internal/handlers"
	"leadcrm/internal/middleware"
	"leadcrm/internal/pdf"
	"leadcrm/internal/repositories"
	"leadcrm/internal/routes"
	"leadcrm/internal/services"
)

// Deps are the collaborators NewHandler wires. Notifier and Emails are
// optional.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    *repositories.Store
	Emails   services.EmailService
	Notifier services.LeadNotifier
}

// NewHandler builds the full HTTP stack: services, gin routes, gzip and
// CORS.
func NewHandler(d Deps) http.Handler {
	cfg, log := d.Config, d.Log

	tokens := services.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, cfg.Auth.Leeway)
	authService := services.NewAuthService(d.Store.Users, tokens, d.Emails, log.Named("auth"))
	leadService := services.NewLeadService(
		d.Store.Leads,
		pdf.NewReportGenerator(cfg.Export.FontPath),
		d.Notifier,
		log.Named("leads"),
	)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.AccessLog(log.Named("http")))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	routes.SetupRoutes(router, routes.Handlers{
		Root:  handlers.NewRootHandler(d.Store, log),
		Auth:  handlers.NewAuthHandler(authService, log),
		Leads: handlers.NewLeadHandler(leadService, log),
	}, tokens, cfg.Server.Swagger)

	return corsFor(cfg.CORS).Handler(router)
}

func corsFor(cfg config.CORSConfig) *cors.Cors {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
	})
}

// optionalIntegrations builds the welcome mailer and the new-lead notifier
// when configured. A notifier that cannot reach Telegram is skipped.
func optionalIntegrations(cfg *config.Config, log *zap.Logger) (services.EmailService, services.LeadNotifier) {
	var emails services.EmailService
	if cfg.Email.Enabled() {
		emails = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}
	var notifier services.LeadNotifier
	if cfg.Telegram.Enabled() {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			notifier = tg
		}
	}
	return emails, notifier
}

// Run serves the API until ctx is cancelled, then drains in-flight
// requests for up to the configured shutdown timeout.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	store, err := repositories.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()
	if err := store.Ping(ctx); err != nil {
		log.Warn("store not reachable at startup", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	emails, notifier := optionalIntegrations(cfg, log)
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: NewHandler(Deps{
			Config:   cfg,
			Log:      log,
			Store:    store,
			Emails:   emails,
			Notifier: notifier,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("swagger", cfg.Server.Swagger),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
