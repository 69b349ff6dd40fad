package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/logger"
)

var (
	configFile string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "zbayes",
	Short: "zbayes - Bayesian spam/ham word frequency classifier",
	Long: `zbayes learns per-word frequencies from a spam corpus and a ham corpus and
scores new messages in both directions, each with a confidence interval.

Words seen in only one corpus are reported as unscored instead of guessed.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is not an error
		_ = godotenv.Load()
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("zbayes - Bayesian spam/ham classifier")
		fmt.Println("Use 'zbayes --help' for usage information")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the configuration named by --config and builds the logger
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	return cfg, logger.New(cfg.Logging), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(milterCmd)
}
