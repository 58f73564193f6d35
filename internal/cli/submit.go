package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/me/turnwheel/internal/replay"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <trace.yaml>",
		Short: "Replay a trace on a turnwheel server",
		Long:  "Parse a YAML trace locally, then POST it to the server's replay endpoint. The server records the session in its own database.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read trace: %w", err)
			}
			trace, err := replay.ParseTrace(data)
			if err != nil {
				return err
			}

			client := NewClient(flagServer, logger)
			resp, err := client.Post("/api/v1/replays", trace)
			if err != nil {
				return fmt.Errorf("submit trace: %w", err)
			}

			var result struct {
				Session struct {
					ID        string `json:"id"`
					StepCount int    `json:"step_count"`
				} `json:"session"`
			}
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Session recorded: %s (%d steps)\n", result.Session.ID, result.Session.StepCount)
			return nil
		},
	}
}
