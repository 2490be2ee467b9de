package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/mhpenta/planviz"
	"github.com/mhpenta/planviz/internal/metrics"
	"github.com/mhpenta/planviz/internal/server"
	"github.com/mhpenta/planviz/internal/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render and probe HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
				Enabled:     cfg.Telemetry.Enabled,
				Endpoint:    cfg.Telemetry.Endpoint,
				ServiceName: cfg.Telemetry.ServiceName,
				SampleRate:  cfg.Telemetry.SampleRate,
			})
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					appLog.Warn("tracer shutdown failed", "error", err.Error())
				}
			}()

			if cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			collector := metrics.NewCollector(cfg.Metrics.Namespace)

			managerOpts := []planviz.ManagerOption{planviz.WithMetrics(collector)}
			traceName := ""
			if cfg.Telemetry.Enabled {
				traceName = cfg.Telemetry.ServiceName
				managerOpts = append(managerOpts, planviz.WithTracer(otel.Tracer("github.com/mhpenta/planviz")))
			}

			manager, err := newManager(ctx, managerOpts...)
			if err != nil {
				return err
			}
			defer manager.Close()

			srv := server.New(server.Options{
				Pipeline:       newPipeline(manager, collector),
				Prober:         newProber(manager, collector),
				Metrics:        collector,
				Logger:         appLog,
				ServiceName:    traceName,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
			})

			return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	bindLocalFlag(cmd, "server.addr", "addr")

	return cmd
}

func init() { rootCmd.AddCommand(newServeCmd()) }
