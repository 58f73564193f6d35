package cli

import (
	"fmt"
	"time"

	"github.com/me/turnwheel/pkg/model"
	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	var limit int
	var kind string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded replay sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			opts := model.ListOptions{Limit: limit, Kind: kind}
			opts.Clamp()
			sessions, total, err := st.ListSessions(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}

			fmt.Printf("%-12s  %-14s  %-20s  %5s  %s\n", "ID", "KIND", "NAME", "STEPS", "CREATED")
			fmt.Printf("%-12s  %-14s  %-20s  %5s  %s\n", "--", "----", "----", "-----", "-------")
			for _, sess := range sessions {
				name := sess.Name
				if name == "" {
					name = "-"
				}
				fmt.Printf("%-12s  %-14s  %-20s  %5d  %s\n",
					sess.ID, sess.Kind, name, sess.StepCount,
					sess.CreatedAt.Local().Format(time.RFC3339))
			}

			if total > len(sessions) {
				fmt.Printf("\n(%d of %d shown)\n", len(sessions), total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to show")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by cycler kind (roundrobin, hierarchical, dynamic)")

	return cmd
}
