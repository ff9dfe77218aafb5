package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"clinical-scribe/internal/config"
	"clinical-scribe/internal/dashboard"
	"clinical-scribe/internal/observability"
	"clinical-scribe/internal/store"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the encounter review dashboard",
		Long:  "Serve the review dashboard: saved records over a JSON API, live pipeline events over WebSocket, and Prometheus metrics on a separate port.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr == "" {
				addr = cfg.DashboardAddr
			}

			hub := dashboard.NewHub()
			go hub.Run()

			if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
				consumer := dashboard.NewConsumer(
					cfg.Kafka.Brokers,
					[]string{cfg.Kafka.TopicAnalysis, cfg.Kafka.TopicArtefacts},
					hub,
				)
				go consumer.Run(cmd.Context())
			}

			metricsServer := observability.NewServer(cfg.MetricsAddr)
			metricsServer.Start()

			srv := &http.Server{
				Addr:         addr,
				Handler:      dashboard.NewRouter(store.New(cfg.OutputDir), hub),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("dashboard shutdown error")
				}
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("metrics shutdown error")
				}
			}()

			log.Info().Str("addr", addr).Str("outputDir", cfg.OutputDir).Msg("dashboard listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to DASHBOARD_ADDR)")
	return cmd
}
