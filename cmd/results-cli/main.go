package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/apierr"
	"github.com/ieltsly/speaking-results/internal/cache"
	"github.com/ieltsly/speaking-results/internal/common/config"
	"github.com/ieltsly/speaking-results/internal/fetch"
	"github.com/ieltsly/speaking-results/internal/kvstore"
	"github.com/ieltsly/speaking-results/internal/service"
	"github.com/ieltsly/speaking-results/pkg/logger"
	"github.com/ieltsly/speaking-results/pkg/version"
)

var (
	configPath string
	asJSON     bool

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of results-cli",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("results-cli version %s\n", version.Get())
		},
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch <session-code-or-url>",
		Short: "Fetch and display the results for a speaking session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runFetch(args[0])
		},
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check whether the scoring API is reachable",
		Run: func(cmd *cobra.Command, args []string) {
			runHealth()
		},
	}

	clearCacheCmd = &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove all cached session results",
		Run: func(cmd *cobra.Command, args []string) {
			runClearCache()
		},
	}

	rootCmd = &cobra.Command{
		Use:   "results-cli",
		Short: "Speaking results client",
		Long:  `results-cli fetches IELTS speaking session results from the scoring API, with local caching and automatic retry`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/results-cli.yaml", "path to configuration file")
	fetchCmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	rootCmd.AddCommand(versionCmd, fetchCmd, healthCmd, clearCacheCmd)
}

// app bundles the wired pipeline for one command invocation.
type app struct {
	svc    *service.SessionService
	store  kvstore.Store
	logger *zap.Logger
}

func newApp() *app {
	cfg, cfgPath, err := config.LoadConfig[config.ClientConfig](configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := kvstore.NewStore(ctx, log, &cfg.Store)
	if err != nil {
		log.Fatal("failed to initialize store",
			zap.String("type", cfg.Store.Type),
			zap.Error(err))
	}

	classifier := &apierr.Classifier{}
	client := fetch.NewClient(cfg.BaseURL, cfg.Timeout, log)
	retrier := fetch.NewRetrier(cfg.RetryAttempts, cfg.RetryInitialDelay, classifier.Retryable, log)
	resultCache := cache.NewResultCache(store, log)

	return &app{
		svc:    service.New(client, retrier, resultCache, classifier, cfg.CacheMaxAge, log),
		store:  store,
		logger: log,
	}
}

func (a *app) close() {
	if closer, ok := a.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	_ = a.logger.Sync()
}

func runFetch(arg string) {
	a := newApp()
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	outcome, apiErr := a.svc.LoadFromURL(ctx, arg)
	if apiErr != nil && apiErr.Kind == apierr.KindNoSessionCode {
		// Not a URL; treat the argument as a bare session code.
		outcome, apiErr = a.svc.Load(ctx, arg)
	}
	if apiErr != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %s\n", apiErr.Kind, apiErr.Message)
		if apiErr.Kind == apierr.KindNotFound && apiErr.SessionCode != "" {
			fmt.Fprintf(os.Stderr, "session code: %s\n", apiErr.SessionCode)
		}
		if apiErr.Kind.UserRetryable() {
			fmt.Fprintln(os.Stderr, "this looks transient; try again in a moment")
		}
		os.Exit(1)
	}

	if asJSON {
		renderJSON(outcome.Result)
		return
	}
	renderText(outcome)
}

func runHealth() {
	a := newApp()
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.svc.CheckHealth(ctx) {
		fmt.Println("scoring API: ok")
		return
	}
	fmt.Println("scoring API: unreachable")
	os.Exit(1)
}

func runClearCache() {
	a := newApp()
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n := a.svc.ClearCache(ctx)
	fmt.Printf("removed %d cached session(s)\n", n)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
