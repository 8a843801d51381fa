package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/common/config"
	"github.com/ieltsly/speaking-results/internal/gateway"
	"github.com/ieltsly/speaking-results/pkg/logger"
	"github.com/ieltsly/speaking-results/pkg/metrics"
	"github.com/ieltsly/speaking-results/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of results-gateway",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("results-gateway version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "results-gateway",
		Short: "Speaking results gateway",
		Long:  `results-gateway serves the speaking-test results front end and proxies /api requests to the scoring backend`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/results-gateway.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig[config.GatewayConfig](configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting results-gateway",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath),
		zap.Int("port", cfg.Port))

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	srv := gateway.NewServer(log, cfg, m)
	if err := srv.RegisterRoutes(router); err != nil {
		log.Fatal("failed to register routes", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down results-gateway")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
