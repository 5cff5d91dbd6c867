package main

import (
	"context"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/option-pricer/src/cmd/price_option/run"
	"github.com/jiaming2012/option-pricer/src/eventservices"
	"github.com/jiaming2012/option-pricer/src/utils"
)

const defaultBaseURL = "http://127.0.0.1:5000"

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/price_option/main.go --base-url http://127.0.0.1:5000",
	Short: "Interactively price a european call option against the pricing api",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		if err := utils.InitEnvironmentVariables(".", goEnv); err != nil {
			log.Fatalf("error loading environment variables: %v", err)
		}

		baseURL, err := cmd.Flags().GetString("base-url")
		if err != nil {
			log.Fatalf("error getting base-url: %v", err)
		}

		if baseURL == "" {
			baseURL = utils.GetEnvOrDefault("PRICING_API_URL", defaultBaseURL)
		}

		manualFallback, err := cmd.Flags().GetBool("manual-fallback")
		if err != nil {
			log.Fatalf("error getting manual-fallback: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		client := eventservices.NewOptionPricingClient(baseURL, nil)
		session := run.NewSession(run.NewPrompter(os.Stdin, os.Stdout), client, manualFallback)

		if err := session.Run(ctx); err != nil {
			log.Fatalf("price_option: %v", err)
		}
	},
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("base-url", "", "Pricing api base url. Defaults to $PRICING_API_URL or "+defaultBaseURL+".")
	runCmd.PersistentFlags().Bool("manual-fallback", false, "Ask for a manual underlying price when no quote is available.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
