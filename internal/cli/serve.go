package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fatali-fataliyev/mood_ledger/api"
	"github.com/fatali-fataliyev/mood_ledger/internal/config"
	"github.com/fatali-fataliyev/mood_ledger/logging"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type", api.TRACE_ID_HEADER},
	AllowCredentials: true,
})

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.Logger.Info("application starting...")
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if cfg.PasscodeHash == "" {
				logging.Logger.Warn("APP_PASSCODE_HASH not set, API is open")
			}
			handler := corsConf.Handler(api.NewApi(a.tracker, cfg.PasscodeHash).Routes())
			return serve(ctx, ":"+cfg.Port, handler)
		},
	}
}

// serve runs the server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
