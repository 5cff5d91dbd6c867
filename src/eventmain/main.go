package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
	"github.com/jiaming2012/option-pricer/src/eventproducers/optionsapi"
	"github.com/jiaming2012/option-pricer/src/eventservices"
	"github.com/jiaming2012/option-pricer/src/logger"
	"github.com/jiaming2012/option-pricer/src/utils"
)

type RunArgs struct {
	GoEnv      string
	EnvDir     string
	ConfigPath string
}

var runCmd = &cobra.Command{
	Use:   "go run src/eventmain/main.go --config pricing-config.yaml",
	Short: "Serve the option pricing api",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		envDir, err := cmd.Flags().GetString("env-dir")
		if err != nil {
			log.Fatalf("error getting env-dir: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		if err := Run(RunArgs{GoEnv: goEnv, EnvDir: envDir, ConfigPath: configPath}); err != nil {
			log.Fatalf("Main: %v", err)
		}
	},
}

func newRouter(resolver eventservices.QuoteResolver, config *eventmodels.PricingConfigYAML) (http.Handler, error) {
	lookback, err := config.GetQuoteLookback()
	if err != nil {
		return nil, err
	}

	timeout, err := config.GetQuoteTimeout()
	if err != nil {
		return nil, err
	}

	handler, err := optionsapi.NewHandler(resolver, lookback, timeout)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	optionsapi.SetupHandler(router, handler)

	return otelhttp.NewHandler(router, "option-pricer"), nil
}

func Run(args RunArgs) (err error) {
	if err := utils.InitEnvironmentVariables(args.EnvDir, args.GoEnv); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	config, err := utils.LoadPricingConfig(args.ConfigPath)
	if err != nil {
		return err
	}

	if err := logger.Setup(config.LogLevel, config.LogFormat); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.OtelEnabled {
		logger.AddTelemetryHook()

		var otelShutdown func(context.Context) error
		otelShutdown, err = setupOTelSDK(ctx, config.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to setup otel sdk: %w", err)
		}

		defer func() {
			err = errors.Join(err, otelShutdown(context.Background()))
		}()
	}

	resolver, err := eventservices.NewQuoteResolver(config, eventservices.QuoteResolverSecrets{
		PolygonApiKey:      os.Getenv("POLYGON_API_KEY"),
		TradierBearerToken: os.Getenv("TRADIER_BEARER_TOKEN"),
	}, nil)
	if err != nil {
		return err
	}

	handler, err := newRouter(resolver, config)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		Addr:              fmt.Sprintf(":%s", config.Port),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s, quote source %s", config.Port, config.QuoteSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Create channel for shutdown signals.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info("Main: gracefully stopped!")
	return nil
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("env-dir", ".", "The directory holding the .env files.")
	runCmd.PersistentFlags().String("config", "", "Path to the pricing config yaml.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
