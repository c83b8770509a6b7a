package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"restaurant/configs"
	"restaurant/events"
	"restaurant/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := configs.SeedAdmin(db, cfg, log); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if cfg.SeedMenu {
			if err := configs.SeedMenu(db, log); err != nil {
				return fmt.Errorf("seed menu: %w", err)
			}
		}

		broker, err := events.NewBroker(events.Config{
			Driver:           cfg.EventsDriver,
			RabbitMQURL:      cfg.RabbitMQURL,
			RabbitMQExchange: cfg.RabbitMQExchange,
			KafkaBrokers:     cfg.KafkaBrokers,
			KafkaTopic:       cfg.KafkaTopic,
		}, log)
		if err != nil {
			return err
		}
		defer broker.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		gin.SetMode(cfg.GinMode)
		app := routes.Setup(db, cfg, log, broker, reg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go app.Hub.Run(ctx)

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           app.Engine,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info("server running", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
