package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anthropics/kodex/internal/store"
)

func newListCmd() *cobra.Command {
	var bundleName string
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hotstrings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var bundleID int64
			if bundleName != "" {
				b, err := s.GetBundleByName(bundleName)
				if err != nil {
					return fmt.Errorf("bundle %q: %w", bundleName, err)
				}
				bundleID = b.ID
			}

			rows, err := s.ListHotstrings(bundleID, enabledOnly)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tREPLACEMENT\tTRIGGERS")
			for _, h := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", h.ID, h.Name, truncate(h.Replacement, 40), triggerSummary(h.Triggers))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&bundleName, "bundle", "", "restrict to one bundle (default: all bundles)")
	cmd.Flags().BoolVar(&enabledOnly, "enabled-only", false, "only list hotstrings in enabled bundles")
	return cmd
}

func newAddCmd() *cobra.Command {
	var (
		name        string
		replacement string
		bundleName  string
		isScript    bool
		enter       bool
		tab         bool
		space       bool
		instant     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a hotstring",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if bundleName == "" {
				bundleName = store.DefaultBundleName
			}
			b, err := s.GetBundleByName(bundleName)
			if err != nil {
				b, err = s.CreateBundle(bundleName)
				if err != nil {
					return fmt.Errorf("bundle %q: %w", bundleName, err)
				}
			}

			triggers := map[store.TriggerType]bool{}
			if instant {
				triggers[store.TriggerInstant] = true
			} else {
				if enter {
					triggers[store.TriggerEnter] = true
				}
				if tab {
					triggers[store.TriggerTab] = true
				}
				if space || (!enter && !tab) {
					triggers[store.TriggerSpace] = true
				}
			}

			h, err := s.SaveHotstring(&store.Hotstring{
				Name:        name,
				Replacement: replacement,
				IsScript:    isScript,
				BundleID:    b.ID,
				Triggers:    triggers,
			})
			if err != nil {
				return err
			}
			fmt.Printf("added hotstring %d (%s -> %q)\n", h.ID, h.Name, truncate(h.Replacement, 40))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "trigger text (required)")
	cmd.Flags().StringVar(&replacement, "replacement", "", "expansion text (required)")
	cmd.Flags().StringVar(&bundleName, "bundle", "", "target bundle (default: Default)")
	cmd.Flags().BoolVar(&isScript, "script", false, "treat replacement as a script template")
	cmd.Flags().BoolVar(&enter, "enter", false, "fire on Enter")
	cmd.Flags().BoolVar(&tab, "tab", false, "fire on Tab")
	cmd.Flags().BoolVar(&space, "space", false, "fire on Space")
	cmd.Flags().BoolVar(&instant, "instant", false, "fire instantly, no trigger key (mutually exclusive with the others)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("replacement")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a hotstring by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.DeleteHotstring(id); err != nil {
				return err
			}
			fmt.Printf("removed hotstring %d\n", id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "hotstring id (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func triggerSummary(triggers map[store.TriggerType]bool) string {
	order := []store.TriggerType{store.TriggerInstant, store.TriggerEnter, store.TriggerTab, store.TriggerSpace}
	out := ""
	for _, t := range order {
		if triggers[t] {
			if out != "" {
				out += ","
			}
			out += string(t)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
