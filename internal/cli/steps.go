package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <session-id>",
		Short: "Show the recorded steps of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			sess, err := st.GetSession(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}
			if sess == nil {
				return fmt.Errorf("session %s not found", args[0])
			}

			steps, err := st.ListSteps(cmd.Context(), sess.ID)
			if err != nil {
				return fmt.Errorf("list steps: %w", err)
			}

			fmt.Printf("Session %s (%s, %d participants)\n\n", sess.ID, sess.Kind, len(sess.Order))
			fmt.Printf("%5s  %-7s  %-20s  %8s  %s\n", "INDEX", "MANAGER", "SELECTED", "POSITION", "ACTIVITY")
			for _, step := range steps {
				selected := step.Selected
				if selected == "" {
					selected = "(none)"
				}
				fmt.Printf("%5d  %-7s  %-20s  %8d  %s\n",
					step.Index, strconv.FormatBool(step.ManagerActs), selected,
					step.Position, activityString(step.Activity))
			}
			return nil
		},
	}
}

// activityString renders the recorded 0/1 workstation flags, "-" when
// the step carried none.
func activityString(flags []int) string {
	if flags == nil {
		return "-"
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = strconv.Itoa(f)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
