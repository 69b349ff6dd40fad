package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/zbayes/pkg/corpus"
	"github.com/zpam/zbayes/pkg/email"
	"github.com/zpam/zbayes/pkg/filter"
)

var corpusParseEmail bool

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the Redis training corpus",
	Long: `Manage training samples kept in Redis lists <key_prefix>:spam and
<key_prefix>:ham. Set training.backend to redis to train from them.`,
}

var corpusAddCmd = &cobra.Command{
	Use:   "add <spam|ham> <file...>",
	Short: "Add sample files to the Redis corpus",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		class, err := corpus.ParseClass(args[0])
		if err != nil {
			return err
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		src, err := filter.OpenRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer src.Close()

		parser := email.NewParser()
		texts := make([]string, 0, len(args)-1)
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			if corpusParseEmail {
				msg, err := parser.ParseBytes(data)
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", path, err)
				}
				texts = append(texts, msg.Text())
				continue
			}
			texts = append(texts, string(data))
		}

		if err := src.Add(ctx, class, texts...); err != nil {
			return err
		}

		fmt.Printf("✅ Added %d %s samples to %s\n", len(texts), class, src.Key(class))
		return nil
	},
}

var corpusResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every sample from the Redis corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		src, err := filter.OpenRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer src.Close()

		if err := src.Reset(ctx); err != nil {
			return err
		}

		fmt.Printf("🗑️  Cleared %s and %s\n", src.Key(corpus.Spam), src.Key(corpus.Ham))
		return nil
	},
}

func init() {
	corpusCmd.AddCommand(corpusAddCmd)
	corpusCmd.AddCommand(corpusResetCmd)

	corpusAddCmd.Flags().BoolVar(&corpusParseEmail, "parse-email", false, "Strip email headers and attachments before storing")
}
