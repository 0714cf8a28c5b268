package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"inventory-ledger/feature/webhooks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	replayDryRun bool
	replayYes    bool
	replayLimit  int
)

// replayCmd re-ingests dead-lettered webhook deliveries.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-ingest dead-lettered webhook deliveries",
	Long: `Replays the webhook payloads archived in dead-letter storage, oldest first.
Deliveries that are fully recorded are removed from the archive; the others stay.

Examples:
  # Show what each archived delivery would do
  replay --dry-run

  # Replay everything without the confirmation prompt
  replay --yes`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayDryRun, "dry-run", false, "Plan every delivery without writing")
	replayCmd.Flags().BoolVar(&replayYes, "yes", false, "Auto-confirm (non-interactive)")
	replayCmd.Flags().IntVar(&replayLimit, "limit", 0, "Replay at most this many deliveries (0 = all)")
	RootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	l := rt.logger

	if err := rt.withDeadLetters(ctx); err != nil {
		return fmt.Errorf("failed to connect to dead-letter storage: %w", err)
	}
	service := rt.webhookService()

	keys, err := rt.deadLetters.List(ctx)
	if err != nil {
		return err
	}
	if replayLimit > 0 && len(keys) > replayLimit {
		keys = keys[:replayLimit]
	}
	if len(keys) == 0 {
		l.Info("Dead-letter archive is empty")
		return nil
	}
	l.Info("Dead-lettered deliveries found", zap.Int("count", len(keys)))

	if !replayDryRun && !confirmReplay(len(keys)) {
		l.Warn("Replay cancelled by user. No changes were made.")
		return nil
	}

	var replayed, kept int
	for _, key := range keys {
		letter, err := rt.deadLetters.Load(ctx, key)
		if err != nil {
			l.Error("Skipping unreadable dead letter", zap.String("key", key), zap.Error(err))
			kept++
			continue
		}
		d := webhooks.Delivery{
			Shop:      letter.Shop,
			Topic:     letter.Topic,
			WebhookID: letter.Headers[webhooks.HeaderWebhookID],
			Payload:   letter.Payload,
		}
		log := l.With(zap.String("key", key), zap.String("shop", d.Shop), zap.String("topic", d.Topic))

		if replayDryRun {
			plans, err := service.Plan(ctx, d)
			if err != nil {
				log.Warn("Delivery would still fail", zap.Error(err))
				kept++
				continue
			}
			for _, p := range plans {
				log.Info("Planned change",
					zap.String("idempotency_key", p.Event.IdempotencyKey),
					zap.String("outcome", string(p.Outcome)),
					zap.String("reason", p.Reason),
				)
			}
			continue
		}

		report, err := service.Process(ctx, d)
		if err != nil || report.Failed() {
			log.Warn("Delivery still failing, keeping it", zap.Strings("errors", report.Errors), zap.Error(err))
			kept++
			continue
		}
		if err := rt.deadLetters.Remove(ctx, key); err != nil {
			log.Error("Delivery recorded but not removed from the archive", zap.Error(err))
			kept++
			continue
		}
		replayed++
		log.Info("Delivery replayed", zap.Int("results", len(report.Results)))
	}

	if replayDryRun {
		l.Info("Dry-run mode: No changes were made.", zap.Int("failing", kept))
		return nil
	}
	l.Info("Replay finished", zap.Int("replayed", replayed), zap.Int("kept", kept))
	return nil
}

// confirmReplay prompts the user for confirmation or uses the --yes flag.
func confirmReplay(count int) bool {
	if replayYes {
		return true
	}

	fmt.Printf("\nType 'yes' to replay %d deliveries into the ledger: ", count)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
