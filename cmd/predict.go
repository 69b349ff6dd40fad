package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/zbayes/pkg/email"
	"github.com/zpam/zbayes/pkg/filter"
	"github.com/zpam/zbayes/pkg/learning"
	"github.com/zpam/zbayes/pkg/profiler"
)

var (
	predictFiles   []string
	predictJSON    bool
	predictProfile bool
)

var predictCmd = &cobra.Command{
	Use:   "predict [message...]",
	Short: "Score messages against the trained models",
	Long: `Build the models from the configured corpus, then score each message argument
(or each --file, parsed as an email) in both directions.

Every message gets P(spam) and P(ham) with confidence intervals. The two are
computed from separate word lists and need not sum to 1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && len(predictFiles) == 0 {
			return fmt.Errorf("no messages given: pass message text or --file")
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		applyTrainingFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		messages, err := collectMessages(args, predictFiles)
		if err != nil {
			return err
		}

		prof := profiler.New()

		timer := prof.Start("train")
		classifier, _, err := filter.Train(context.Background(), cfg, log)
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		timer.Stop()

		predictions := make([]*learning.Prediction, 0, len(messages))
		for _, message := range messages {
			timer := prof.Start("predict")
			predictions = append(predictions, classifier.Predict(message))
			timer.Stop()
		}
		if predictProfile {
			defer prof.PrintReport(os.Stderr)
		}

		if predictJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(predictions)
		}

		for i, pred := range predictions {
			if i > 0 {
				fmt.Println()
			}
			printPrediction(os.Stdout, pred)
		}
		return nil
	},
}

// collectMessages returns the text of every argument followed by every parsed file
func collectMessages(args, files []string) ([]string, error) {
	messages := append([]string(nil), args...)

	parser := email.NewParser()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		msg, err := parser.ParseBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		messages = append(messages, msg.Text())
	}
	return messages, nil
}

// printPrediction writes the human readable report of pred
func printPrediction(w io.Writer, pred *learning.Prediction) {
	fmt.Fprintf(w, "📧 Message: %s\n", pred.Message)
	fmt.Fprintf(w, "🔴 Probability of spam: %.2f\n", pred.ProbabilitySpam)
	fmt.Fprintf(w, "🟢 Probability of ham:  %.2f\n", pred.ProbabilityHam)
	fmt.Fprintf(w, "📏 Spam interval: %s\n", pred.IntervalSpam)
	fmt.Fprintf(w, "📏 Ham interval:  %s\n", pred.IntervalHam)

	switch {
	case pred.Indeterminate():
		fmt.Fprintf(w, "❔ Verdict: indeterminate\n")
	default:
		fmt.Fprintf(w, "🎯 Verdict: %s\n", pred.Label())
	}

	if len(pred.Unscored) > 0 {
		fmt.Fprintf(w, "🔍 Unscored words:")
		for _, u := range pred.Unscored {
			fmt.Fprintf(w, " %s", u.Word)
		}
		fmt.Fprintf(w, "\n")
	}
}

func init() {
	addTrainingFlags(predictCmd)
	predictCmd.Flags().StringArrayVarP(&predictFiles, "file", "f", nil, "Email file to score (repeatable)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print predictions as JSON")
	predictCmd.Flags().BoolVar(&predictProfile, "profile", false, "Print a timing report to stderr")
}
