package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// charsSavedPerHour is the display-only heuristic used to turn a raw
// chars_saved counter into an approximate hours-saved figure. Not derived
// from any measurement; purely for the stats verb's human-readable output.
const charsSavedPerHour = 24000.0

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show expansion counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			expanded, err := s.GetStat("expanded")
			if err != nil {
				return err
			}
			charsSaved, err := s.GetStat("chars_saved")
			if err != nil {
				return err
			}
			hours := float64(charsSaved) / charsSavedPerHour

			fmt.Printf("expansions:    %s\n", humanize.Comma(expanded))
			fmt.Printf("chars saved:   %s\n", humanize.Comma(charsSaved))
			fmt.Printf("est. hours saved: %s\n", humanize.FormatFloat("#,###.##", hours))
			return nil
		},
	}
}
