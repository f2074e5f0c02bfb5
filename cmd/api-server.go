package cmd

import (
	"log"

	"github.com/freshersjob/freshersjob/internal/api"
	"github.com/freshersjob/freshersjob/internal/config"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/freshersjob/freshersjob/internal/telemetry"
	"github.com/spf13/cobra"
)

var apiServerCmd = &cobra.Command{
	Use:   "api-server",
	Short: "Start the FreshersJob REST API",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()

		shutdownTelemetry := telemetry.NewProvider(conf.OTEL_EXPORTER_OTLP_ENDPOINT)
		defer shutdownTelemetry()

		store, err := cmd.Flags().GetString("store")
		if err != nil {
			log.Fatal(err)
		}

		s, err := api.New(store)
		if err != nil {
			log.Fatal(err)
		}
		s.Start()
	},
}

// Register the "api-server" command
func init() {
	apiServerCmd.Flags().String("store", services.StorePostgres, "Record store backing the API: postgres or memory")
	rootCmd.AddCommand(apiServerCmd)
}
