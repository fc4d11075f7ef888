package main

import (
	"fmt"
	"os"

	"github.com/fjod/ishop4u/internal/config"
	"github.com/fjod/ishop4u/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ishop",
	Short: "iShop4U storefront client",
	Long: `ishop keeps a local mirror of a shopper's remote cart in sync and serves
it to the storefront UI.

Available subcommands:
  serve - Run the local storefront API
  cart  - Inspect or change a user's cart from the terminal`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./ishop.yaml if present)")
}

// bootstrap loads configuration and builds the root logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
