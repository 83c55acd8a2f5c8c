package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anthropics/kodex/internal/klog"
	"github.com/anthropics/kodex/internal/ledger"
	"github.com/anthropics/kodex/internal/sender"
)

// manualSource identifies a time-log verb invocation in the ledger, distinct
// from the browser-extension/CSR/GT3 sources the IPC ingress writes (§4.I
// supplementary feature).
const manualSource = "manual"

func newTimeLogCmd() *cobra.Command {
	var ticket string
	var export bool

	cmd := &cobra.Command{
		Use:   "time-log",
		Short: "Seed the active ticket from the clipboard, or export today's CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths()
			l, err := ledger.Open(
				filepath.Join(p.DataDir, "time_tracking.json"),
				filepath.Join(p.DataDir, "archive"),
				p.DocumentsDir,
				ledger.Options{Log: klog.Component(rootLogger, "ledger")},
			)
			if err != nil {
				return err
			}

			if export {
				path, err := l.ExportCSV()
				if err != nil {
					return err
				}
				fmt.Printf("exported time log to %s\n", path)
				return nil
			}

			if ticket == "" {
				clip := sender.SystemClipboard{}
				text, err := clip.ReadText()
				if err != nil {
					return fmt.Errorf("reading clipboard: %w", err)
				}
				ticket = ledger.ExtractTicketNumber(text)
			}
			if ticket == "" {
				return fmt.Errorf("no ticket number found on the clipboard; pass --ticket explicitly")
			}

			if err := l.Ingest(ledger.IngestPayload{Source: manualSource, TicketNumber: ticket}); err != nil {
				return err
			}
			fmt.Printf("now tracking ticket #%s\n", ticket)
			return nil
		},
	}
	cmd.Flags().StringVar(&ticket, "ticket", "", "ticket number (default: extract from clipboard)")
	cmd.Flags().BoolVar(&export, "export", false, "export today's CSV instead of seeding a ticket")
	return cmd
}
