package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/me/turnwheel/internal/replay"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var expectFile string

	cmd := &cobra.Command{
		Use:   "verify <trace.yaml>...",
		Short: "Check that traces replay deterministically",
		Long: `Replay each trace on two identically constructed cyclers in lockstep and
through a mid-run snapshot restore, failing if any selection or state
diverges. With --expect, the replayed selections are also compared
against a file of expected identifiers, one per line (the first line is
the opening reset). Nothing is recorded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expectFile != "" && len(args) != 1 {
				return fmt.Errorf("--expect requires exactly one trace")
			}

			runner := replay.NewRunner(nil, logger)

			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read trace: %w", err)
				}
				trace, err := replay.ParseTrace(data)
				if err != nil {
					fmt.Printf("FAIL  %s: %v\n", path, err)
					failed++
					continue
				}
				if err := runner.Verify(cmd.Context(), trace); err != nil {
					fmt.Printf("FAIL  %s: %v\n", path, err)
					failed++
					continue
				}
				if expectFile != "" {
					if err := checkExpected(cmd, runner, trace, expectFile); err != nil {
						fmt.Printf("FAIL  %s: %v\n", path, err)
						failed++
						continue
					}
				}
				fmt.Printf("OK    %s\n", path)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d traces failed verification", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&expectFile, "expect", "", "File of expected selections, one per line")

	return cmd
}

// checkExpected replays the trace and compares every selection, the
// opening reset included, against the expectation file. Blank lines and
// lines starting with # are skipped; "-" matches an empty selection.
func checkExpected(cmd *cobra.Command, runner *replay.Runner, trace *replay.Trace, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read expectations: %w", err)
	}
	defer f.Close()

	var want []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		want = append(want, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read expectations: %w", err)
	}

	result, err := runner.Run(cmd.Context(), trace)
	if err != nil {
		return err
	}
	if len(result.Steps) != len(want) {
		return fmt.Errorf("expected %d selections, trace produced %d", len(want), len(result.Steps))
	}
	for i, step := range result.Steps {
		got := step.Selected
		if got == "" {
			got = "-"
		}
		if got != want[i] {
			return fmt.Errorf("selection %d: got %q, want %q", i, got, want[i])
		}
	}
	return nil
}
