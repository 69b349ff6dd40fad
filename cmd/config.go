package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/stopwords"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and manage zbayes configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a configuration file holding every option at its default value`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "config.yaml"
		if len(args) > 0 {
			configPath = args[0]
		}

		if _, err := os.Stat(configPath); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}
		}

		if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", configPath)
		fmt.Printf("📝 Point training.spam_dir and training.ham_dir at your corpus\n")
		fmt.Printf("🚀 Use 'zbayes train --config %s' to build the models\n", configPath)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file for syntax and logical errors`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := args[0]

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %w", err)
		}

		warnings := validateConfigLogic(cfg)

		fmt.Printf("✅ Configuration is valid: %s\n", configPath)

		if len(warnings) > 0 {
			fmt.Printf("\n⚠️  Warnings:\n")
			for _, warning := range warnings {
				fmt.Printf("  - %s\n", warning)
			}
		}

		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, environment overrides included`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if path != "" {
			fmt.Printf("Configuration: %s\n\n", path)
		} else {
			fmt.Printf("Default Configuration:\n\n")
		}

		fmt.Printf("📚 Training:\n")
		fmt.Printf("  Backend: %s\n", cfg.Training.Backend)
		switch cfg.Training.Backend {
		case "redis":
			fmt.Printf("  Redis: %s (db %d, prefix %s)\n", cfg.Redis.RedisURL, cfg.Redis.DatabaseNum, cfg.Redis.KeyPrefix)
		default:
			fmt.Printf("  Spam dir: %s\n", cfg.Training.SpamDir)
			fmt.Printf("  Ham dir: %s\n", cfg.Training.HamDir)
			fmt.Printf("  Extensions: %v\n", cfg.Training.Extensions)
			fmt.Printf("  Parse email: %v\n", cfg.Training.ParseEmail)
		}

		fmt.Printf("\n🔤 Tokenizer:\n")
		fmt.Printf("  Max token length: %d (exclusive)\n", cfg.Tokenizer.MaxTokenLength)
		if cfg.Tokenizer.StopwordsFile != "" {
			fmt.Printf("  Stopwords: %s\n", cfg.Tokenizer.StopwordsFile)
		} else {
			fmt.Printf("  Stopwords: built-in English (%d words)\n", stopwords.English().Len())
		}

		fmt.Printf("\n📏 Confidence:\n")
		fmt.Printf("  z: %.2f\n", cfg.Confidence.ZScore)

		fmt.Printf("\n📨 Milter:\n")
		fmt.Printf("  Listen: %s://%s\n", cfg.Milter.Network, cfg.Milter.Address)
		fmt.Printf("  Headers: %v (prefix %s)\n", cfg.Milter.AddHeaders, cfg.Milter.HeaderPrefix)
		if cfg.Milter.RejectThreshold > 0 {
			fmt.Printf("  Reject when spam interval >= %.2f\n", cfg.Milter.RejectThreshold)
		} else {
			fmt.Printf("  Reject: disabled\n")
		}

		fmt.Printf("\n📝 Logging: %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)

		return nil
	},
}

// validateConfigLogic reports settings that are valid but probably unintended
func validateConfigLogic(cfg *config.Config) []string {
	var warnings []string

	if cfg.Training.Backend == "dir" && cfg.Training.SpamDir == cfg.Training.HamDir {
		warnings = append(warnings, "spam_dir and ham_dir are the same directory")
	}

	if cfg.Confidence.ZScore < 1 {
		warnings = append(warnings, fmt.Sprintf("z_score %.2f gives intervals narrower than one standard deviation", cfg.Confidence.ZScore))
	}

	if cfg.Milter.RejectThreshold > 0 && cfg.Milter.RejectThreshold < 0.5 {
		warnings = append(warnings, "reject_threshold below 0.5 rejects messages that lean ham")
	}

	if cfg.Milter.RejectThreshold > 0 && !cfg.Milter.AddHeaders {
		warnings = append(warnings, "milter rejects without stamping result headers")
	}

	return warnings
}

func init() {
	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configGenCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
