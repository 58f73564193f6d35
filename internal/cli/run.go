package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/me/turnwheel/internal/replay"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var noSave bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <trace.yaml>",
		Short: "Replay a trace file and print every selection",
		Long: `Replay a YAML trace through the cycler it names, printing one line per
step to stdout. Unless --no-save is given, the session and its steps are
recorded in the database for later inspection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read trace: %w", err)
			}
			trace, err := replay.ParseTrace(data)
			if err != nil {
				return err
			}

			runner := replay.NewRunner(nil, logger)
			if !noSave {
				st, err := openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				runner = replay.NewRunner(st, logger)
			}

			result, err := runner.Run(cmd.Context(), trace)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}

			if asJSON {
				out := map[string]any{
					"session": result.Session,
					"steps":   result.Steps,
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			for _, step := range result.Steps {
				label := step.Selected
				if label == "" {
					label = "(none)"
				}
				if step.Index == 0 {
					fmt.Printf("%4d  reset  %s\n", step.Index, label)
					continue
				}
				fmt.Printf("%4d  next   %s\n", step.Index, label)
			}

			if !noSave {
				fmt.Printf("\nSession recorded: %s (%d steps)\n", result.Session.ID, result.Session.StepCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "Replay without recording the session")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session and steps as JSON instead of a table")

	return cmd
}
