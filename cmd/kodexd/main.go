// Command kodexd is Kodex's headless daemon and CLI surface (§4.L): it
// starts the expansion engine (`run`) and exposes CRUD/import/export/stat
// verbs against the same on-disk store the daemon uses.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/klog"
	"github.com/anthropics/kodex/internal/orchestrator"
	"github.com/anthropics/kodex/internal/store"
)

const version = "1.0.0"

var (
	flagDataDir      string
	flagDocumentsDir string
	flagDebug        bool

	rootLogger *zap.Logger
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kodexd",
		Short:         "Kodex text-expansion engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// flagDataDir/flagDocumentsDir may already hold a caller-set value (tests
	// pin them to a temp dir); only fall back to the real user defaults when
	// they're still unset, since StringVar assigns its default immediately.
	if flagDataDir == "" {
		home, _ := os.UserHomeDir()
		flagDataDir = filepath.Join(home, ".kodex")
	}
	if flagDocumentsDir == "" {
		home, _ := os.UserHomeDir()
		flagDocumentsDir = filepath.Join(home, "Documents")
	}
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", flagDataDir, "Kodex data directory")
	root.PersistentFlags().StringVar(&flagDocumentsDir, "documents-dir", flagDocumentsDir, "CSV export directory for time-ledger archives")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable development-mode (human-readable) logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		l, err := klog.New(flagDebug)
		if err != nil {
			return err
		}
		rootLogger = l
		return nil
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if rootLogger != nil {
			rootLogger.Sync()
		}
		return nil
	}

	root.AddCommand(
		newRunCmd(),
		newListCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newBundleCreateCmd(),
		newBundleToggleCmd(),
		newBundleDeleteCmd(),
		newImportBundleCmd(),
		newExportBundleCmd(),
		newStatsCmd(),
		newTimeLogCmd(),
		newCheatsheetCmd(),
		newMigrateCmd(),
	)
	return root
}

func paths() orchestrator.Paths {
	return orchestrator.Paths{DataDir: flagDataDir, DocumentsDir: flagDocumentsDir}
}

// openStore opens just the Store, for the CRUD/bundle/stats verbs that don't
// need the full daemon (input monitor, watcher, ledger scheduler) running.
func openStore() (*store.Store, error) {
	if err := os.MkdirAll(flagDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("kodexd: creating %s: %w", flagDataDir, err)
	}
	dbPath := filepath.Join(flagDataDir, "kodex.db")
	return store.Open(dbPath, klog.Component(rootLogger, "store"))
}

