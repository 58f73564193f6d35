// Package cli implements the turnwheel command line: replaying and
// verifying trace files locally, inspecting recorded sessions, and
// submitting traces to a turnwheel-server.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/turnwheel/internal/logging"
	"github.com/me/turnwheel/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagDB        string
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// defaultServer returns the default server URL, checking TURNWHEEL_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("TURNWHEEL_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// defaultDBPath returns the database path, checking TURNWHEEL_DB env var
// first. Empty means ~/.turnwheel/turnwheel.db, resolved at open time.
func defaultDBPath() string {
	return os.Getenv("TURNWHEEL_DB")
}

// openStore opens the session database named by --db, creating the
// default directory when no path was given.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	path := flagDB
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir := filepath.Join(home, ".turnwheel")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", dir, err)
		}
		path = filepath.Join(dir, "turnwheel.db")
	}

	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return st, nil
}

// NewRootCmd creates the root cobra command for the turnwheel CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "turnwheel",
		Short: "Turnwheel — turn-order cyclers with recorded replay",
		Long:  "Turnwheel replays turn-order traces through round-robin, hierarchical, and dynamic cyclers, records every selection, and verifies replay determinism.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagDB, "db", defaultDBPath(), "Session database path (or TURNWHEEL_DB env; default ~/.turnwheel/turnwheel.db)")
	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Turnwheel server URL (or TURNWHEEL_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newVerifyCmd(),
		newSubmitCmd(),
		newSessionsCmd(),
		newStepsCmd(),
	)

	return root
}
