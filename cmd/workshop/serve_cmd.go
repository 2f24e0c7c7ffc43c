package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/iota-uz/garage/modules/workshop/presentation/controllers"
	"github.com/iota-uz/garage/pkg/logging"
	"github.com/iota-uz/garage/pkg/metrics"
	"github.com/iota-uz/garage/pkg/middleware"
	"github.com/iota-uz/garage/pkg/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health, metrics and bill number diagnostics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			conf, logger := env.conf, env.logger

			if conf.OpenTelemetry.Enabled {
				cleanup := logging.SetupTracing(context.Background(), conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
				defer cleanup()
				logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
			}

			ctrls := []server.Controller{
				metrics.NewHealthController("/health", env.pool),
				controllers.NewBillNumberController(env.module.BillNumbers),
			}
			if conf.Prometheus.Enabled {
				ctrls = append(ctrls, metrics.NewPrometheusController(conf.Prometheus.Path, nil))
			}
			srv := server.NewHTTPServer(ctrls, []mux.MiddlewareFunc{
				middleware.WithLogger(logger),
				middleware.WithPool(env.pool),
			}, nil, nil)
			srv.Logger = logger

			if addr == "" {
				addr = conf.SocketAddress
			}
			return srv.Start(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from PORT and GO_APP_ENV)")
	return cmd
}
