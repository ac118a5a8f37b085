package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/beambeam/internal/api"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/units"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		listen string
		unit   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			srv := &http.Server{
				Addr:              listen,
				Handler:           api.LoggingMiddleware(api.NewServer(s, unit).ServeMux()),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				monitoring.Logf("serving run history on %s", listen)
				errc <- srv.ListenAndServe()
			}()
			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "localhost:8080", "address to listen on")
	cmd.Flags().StringVar(&unit, "unit", units.Millimeter, "default length unit of the API")
	return cmd
}
