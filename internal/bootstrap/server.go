package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/tourdesk/api"
	"github.com/Domenick1991/tourdesk/config"
	"github.com/Domenick1991/tourdesk/internal/httpkit"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/metrics"
	"github.com/Domenick1991/tourdesk/internal/ratelimit"
	"github.com/Domenick1991/tourdesk/internal/service/inquiry"
	"github.com/Domenick1991/tourdesk/internal/service/stats"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	shutdownTimeout = 5 * time.Second
	swaggerSpecFile = "inquiries.swagger.json"
	adminRealm      = "tourdesk admin"
)

type Dependencies struct {
	Inquiries     inquiry.InquiryUseCase
	Stats         stats.StatsUseCase
	Limiter       ratelimit.Limiter
	Authenticator httpkit.Authenticator
	Log           *logger.Logger
}

// Run serves handler on cfg.HTTP.Address and blocks until ctx is canceled or
// the server fails. Cancellation triggers a graceful shutdown.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.HTTP.Address).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires every route. The public form is rate limited, everything
// under /api/admin requires Basic auth.
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		httpkit.RequestID(),
		httpkit.RequestLogger(log),
		metrics.Middleware(),
		httpkit.SecurityHeaders(),
		cors.New(corsConfig(cfg.HTTP.CORSOrigins)),
	)

	root := router.Group("")
	api.NewHealthHandler(cfg.App.Name, cfg.App.Version).Register(root)

	public := router.Group("/api")
	api.NewInquiryHandler(deps.Inquiries, log).Register(public,
		httpkit.BodyLimit(cfg.HTTP.BodyLimitBytes),
		httpkit.RateLimit(deps.Limiter, log),
	)

	admin := router.Group("/api/admin", httpkit.BasicAuth(deps.Authenticator, adminRealm, log))
	api.NewAdminHandler(deps.Inquiries, deps.Stats, log).Register(admin)

	router.GET("/metrics", metrics.Handler())

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerSpecFile))))
	}

	router.NoRoute(func(c *gin.Context) {
		httpkit.Error(c, http.StatusNotFound, "Not found")
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders: []string{httpkit.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
