package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "field-reports",
	Short: "Export field photo reports as archives, documents and page images",
	Long: `Field Reports turns geotagged photo reports into shareable exports:
a ZIP of annotated photos, a PDF document, or flattened page images with
an address block and a street map of where each report was taken.

Reports are read from PostgreSQL (DATABASE_URL), MariaDB (MYSQL_DSN) or a
JSON file. Map tiles and reverse geocoding answers are cached on disk.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
