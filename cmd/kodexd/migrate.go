package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMigrateCmd is named in the original CLI surface but intentionally
// unimplemented: importing the legacy AHK/registry configuration is out of
// scope (see the legacy-migration non-goal). It exists only so `kodexd
// migrate` fails with a clear, non-zero-exit message instead of "unknown
// command".
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "migrate",
		Short:  "Not implemented: import legacy AHK/registry configuration",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("kodexd: migrate is not implemented; use the legacy AutoHotkey tool's own export and kodexd import-bundle instead")
		},
	}
}
