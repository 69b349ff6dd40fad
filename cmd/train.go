package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/filter"
	"github.com/zpam/zbayes/pkg/learning"
)

var (
	trainSpamDir string
	trainHamDir  string
	trainBackend string
	trainStats   bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Build the spam and ham word frequency models",
	Long: `Build the spam and ham word frequency models from the configured corpus and
report their sizes, the class priors and any samples that could not be read.

Models live in memory only; every command that needs them rebuilds from the corpus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		applyTrainingFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		fmt.Printf("🧠 zbayes Training\n")
		fmt.Printf("═══════════════════════════════════════\n")
		printCorpus(cfg)
		fmt.Printf("\n")

		classifier, result, err := filter.Train(context.Background(), cfg, log)
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		printTrainingResult(result)

		if trainStats {
			fmt.Printf("\n")
			classifier.PrintStats(os.Stdout)
		}
		return nil
	},
}

// applyTrainingFlags overrides corpus settings with explicitly set flags
func applyTrainingFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("spam-dir") {
		cfg.Training.SpamDir = trainSpamDir
	}
	if cmd.Flags().Changed("ham-dir") {
		cfg.Training.HamDir = trainHamDir
	}
	if cmd.Flags().Changed("backend") {
		cfg.Training.Backend = trainBackend
	}
}

func addTrainingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&trainSpamDir, "spam-dir", "", "Directory of spam samples")
	cmd.Flags().StringVar(&trainHamDir, "ham-dir", "", "Directory of ham samples")
	cmd.Flags().StringVar(&trainBackend, "backend", "", "Corpus backend (dir or redis)")
}

func printCorpus(cfg *config.Config) {
	switch cfg.Training.Backend {
	case "redis":
		fmt.Printf("🗄️  Redis corpus: %s (prefix %s)\n", cfg.Redis.RedisURL, cfg.Redis.KeyPrefix)
	default:
		fmt.Printf("📁 Spam directory: %s\n", cfg.Training.SpamDir)
		fmt.Printf("📁 Ham directory: %s\n", cfg.Training.HamDir)
	}
}

func printTrainingResult(result *learning.TrainingResult) {
	fmt.Printf("✅ Spam: %d documents, %d words\n", result.Spam.DocumentCount, result.Spam.VocabularySize)
	fmt.Printf("✅ Ham: %d documents, %d words\n", result.Ham.DocumentCount, result.Ham.VocabularySize)
	fmt.Printf("⚖️  Priors: spam %.3f, ham %.3f\n", result.Priors.Spam, result.Priors.Ham)
	fmt.Printf("⏱️  Time taken: %v\n", result.Duration)

	if len(result.Skipped) > 0 {
		fmt.Printf("\n⚠️  Skipped %d unreadable samples (still counted as documents):\n", len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Printf("  - [%s] %s: %v\n", s.Class, s.Name, s.Err)
		}
	}
}

func init() {
	addTrainingFlags(trainCmd)
	trainCmd.Flags().BoolVarP(&trainStats, "stats", "s", false, "Print model statistics and top words")
}
