package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/gsheets"
	"github.com/username/foliomap/src/handlers"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/services"
)

var servePort int

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
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

func enableCORS(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		}
		if r.Method == http.MethodOptions {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		client, err := gsheets.NewClient(cfg.GSheets.ServiceAccountJSONPath)
		if err != nil {
			return err
		}
		reportService := services.NewReportService(cfg, client)
		chartHandler := handlers.NewChartHandler(reportService)

		mux := http.NewServeMux()
		mux.HandleFunc("GET /{$}", chartHandler.HandleIndexPage)
		mux.HandleFunc("GET /chart/{kind}", chartHandler.HandleChartPage)
		mux.HandleFunc("GET /api/chart/{kind}", chartHandler.HandleChartData)
		mux.HandleFunc("GET /api/health", chartHandler.HandleHealth)

		finalHandler := enableCORS(cfg.Server.CORSAllowedOrigins, rateLimitMiddleware(handlers.SecurityHeaders(mux)))

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		server := &http.Server{
			Addr:         serverAddr,
			Handler:      finalHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.L.Info("Server starting", "address", serverAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return errs.Wrap(errs.KindUnexpected, "server failed", err)
		case <-ctx.Done():
		}

		logger.L.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(errs.KindUnexpected, "server shutdown failed", err)
		}
		logger.L.Info("Server stopped gracefully.")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}
