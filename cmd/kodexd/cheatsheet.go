package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newCheatsheetCmd implements the headless, searchable hotstring listing
// (§4.L) — explicitly not a GUI window: it prints the full list, then drops
// into a readline prompt that filters it by substring as the operator types,
// exiting on an empty line or EOF.
func newCheatsheetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cheatsheet",
		Short: "Browse all enabled hotstrings, grouped by bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			bundles, err := s.ListBundles()
			if err != nil {
				return err
			}

			type entry struct{ bundle, name, replacement string }
			var entries []entry
			for _, b := range bundles {
				if !b.Enabled {
					continue
				}
				rows, err := s.ListHotstrings(b.ID, false)
				if err != nil {
					return err
				}
				for _, h := range rows {
					entries = append(entries, entry{b.Name, h.Name, h.Replacement})
				}
			}

			color := isatty.IsTerminal(os.Stdout.Fd())
			print := func(es []entry) {
				lastBundle := ""
				for _, e := range es {
					if e.bundle != lastBundle {
						if color {
							fmt.Printf("\033[1m%s\033[0m\n", e.bundle)
						} else {
							fmt.Println(e.bundle)
						}
						lastBundle = e.bundle
					}
					fmt.Printf("  %-20s %s\n", e.name, truncate(e.replacement, 60))
				}
			}
			print(entries)

			if !isatty.IsTerminal(os.Stdin.Fd()) {
				return nil
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "filter> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "",
			})
			if err != nil {
				return fmt.Errorf("cheatsheet: starting filter prompt: %w", err)
			}
			defer rl.Close()

			for {
				line, err := rl.Readline()
				if err != nil {
					if err == readline.ErrInterrupt {
						continue
					}
					if err == io.EOF {
						return nil
					}
					return err
				}
				line = strings.TrimSpace(line)
				if line == "" {
					return nil
				}
				var filtered []entry
				for _, e := range entries {
					if strings.Contains(strings.ToLower(e.name), strings.ToLower(line)) {
						filtered = append(filtered, e)
					}
				}
				print(filtered)
			}
		},
	}
}
