package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/filter"
	"github.com/zpam/zbayes/pkg/learning"
	"github.com/zpam/zbayes/pkg/milter"
)

var (
	milterNetwork string
	milterAddress string

	// Coalesces SIGHUP storms into one rebuild at a time
	reloads singleflight.Group
)

var milterCmd = &cobra.Command{
	Use:   "milter",
	Short: "Start milter server for Postfix/Sendmail integration",
	Long: `Train the models, then classify mail in-line as a milter for Postfix or Sendmail.

Each message gets X-Bayes-* headers with both probabilities and their intervals.
Send SIGHUP to rebuild the models from the corpus without restarting.

For Postfix integration, add to main.cf:
  smtpd_milters = inet:127.0.0.1:7358
  non_smtpd_milters = inet:127.0.0.1:7358
  milter_default_action = accept`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("network") {
			cfg.Milter.Network = milterNetwork
		}
		if cmd.Flags().Changed("address") {
			cfg.Milter.Address = milterAddress
		}
		applyTrainingFlags(cmd, cfg)

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		classifier, result, err := filter.Train(context.Background(), cfg, log)
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		printTrainingResult(result)

		listener, err := net.Listen(cfg.Milter.Network, cfg.Milter.Address)
		if err != nil {
			return fmt.Errorf("failed to create listener: %w", err)
		}
		defer listener.Close()

		server := milter.NewServer(&cfg.Milter, classifier, log)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigChan)

		serverErr := make(chan error, 1)
		go func() {
			fmt.Printf("\n📨 zbayes milter starting on %s://%s\n", cfg.Milter.Network, cfg.Milter.Address)
			if cfg.Milter.RejectThreshold > 0 {
				fmt.Printf("🎯 Reject when spam interval >= %.2f\n", cfg.Milter.RejectThreshold)
			}
			fmt.Printf("🚀 Press Ctrl+C to stop\n\n")

			serverErr <- server.Serve(ctx, listener)
		}()

		for {
			select {
			case sig := <-sigChan:
				if sig == syscall.SIGHUP {
					go reloads.Do("retrain", func() (interface{}, error) {
						retrain(cfg, classifier, log)
						return nil, nil
					})
					continue
				}

				fmt.Printf("\n🛑 Shutdown signal received, stopping milter server...\n")
				shutdownCtx, shutdownCancel := context.WithTimeout(
					context.Background(),
					time.Duration(cfg.Milter.GracefulShutdownTimeout)*time.Millisecond,
				)
				cancel()

				select {
				case err := <-serverErr:
					if err != nil && !errors.Is(err, context.Canceled) {
						fmt.Printf("⚠️  Server shutdown with error: %v\n", err)
					} else {
						fmt.Printf("✅ Milter server stopped gracefully\n")
					}
				case <-shutdownCtx.Done():
					fmt.Printf("⏰ Shutdown timeout exceeded, forcing stop\n")
					server.Close()
				}
				shutdownCancel()
				return nil

			case err := <-serverErr:
				if err != nil {
					return fmt.Errorf("milter server error: %w", err)
				}
				return nil
			}
		}
	},
}

// retrain rebuilds the models in place. Failures keep the current models.
func retrain(cfg *config.Config, classifier *learning.Classifier, log zerolog.Logger) {
	ctx := context.Background()

	src, closeSource, err := filter.OpenSource(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("retrain: cannot open corpus")
		return
	}
	defer closeSource()

	result, err := classifier.Retrain(ctx, src)
	if err != nil {
		log.Error().Err(err).Msg("retrain failed, keeping current models")
		return
	}

	log.Info().
		Int("spam_documents", result.Spam.DocumentCount).
		Int("ham_documents", result.Ham.DocumentCount).
		Int("skipped", len(result.Skipped)).
		Dur("took", result.Duration).
		Msg("models reloaded")
}

func init() {
	addTrainingFlags(milterCmd)
	milterCmd.Flags().StringVarP(&milterNetwork, "network", "n", "", "Network type (tcp or unix)")
	milterCmd.Flags().StringVarP(&milterAddress, "address", "a", "", "Bind address (e.g., 127.0.0.1:7358 or /tmp/zbayes.sock)")
}
