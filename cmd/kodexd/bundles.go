package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/bundle"
)

func newBundleCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bundle-create <name>",
		Short: "Create a new bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			b, err := s.CreateBundle(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("created bundle %d (%s)\n", b.ID, b.Name)
			return nil
		},
	}
}

func newBundleToggleCmd() *cobra.Command {
	var enabled bool
	cmd := &cobra.Command{
		Use:   "bundle-toggle <name>",
		Short: "Enable or disable a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			b, err := s.GetBundleByName(args[0])
			if err != nil {
				return err
			}
			if err := s.SetBundleEnabled(b.ID, enabled); err != nil {
				return err
			}
			fmt.Printf("bundle %q enabled=%v\n", b.Name, enabled)
			return nil
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "desired enabled state")
	return cmd
}

func newBundleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bundle-delete <name>",
		Short: "Delete a bundle and its hotstrings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			b, err := s.GetBundleByName(args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteBundle(b.ID); err != nil {
				return err
			}
			fmt.Printf("deleted bundle %q\n", args[0])
			return nil
		},
	}
}

func newImportBundleCmd() *cobra.Command {
	var bundleName string
	var useFileTriggers bool

	cmd := &cobra.Command{
		Use:   "import-bundle <path.kodex>",
		Short: "Import a .kodex bundle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			c := &bundle.Codec{Store: s, Log: zap.NewNop().Sugar()}
			if rootLogger != nil {
				c.Log = rootLogger.Named("bundle").Sugar()
			}
			n, err := c.Import(args[0], bundle.ImportOptions{BundleName: bundleName, UseFileTriggers: useFileTriggers})
			if err != nil {
				return err
			}
			fmt.Printf("imported %d hotstrings from %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&bundleName, "bundle", "", "override the bundle name from the file")
	cmd.Flags().BoolVar(&useFileTriggers, "use-file-triggers", true, "honor the file's trigger banks instead of defaulting everything to Space")
	return cmd
}

func newExportBundleCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export-bundle <name>",
		Short: "Export a bundle to a .kodex file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			c := &bundle.Codec{Store: s, Log: zap.NewNop().Sugar()}
			if rootLogger != nil {
				c.Log = rootLogger.Named("bundle").Sugar()
			}
			if outputPath == "" {
				outputPath = bundle.ExportFilename(args[0])
			}
			n, err := c.Export(args[0], outputPath)
			if err != nil {
				return err
			}
			fmt.Printf("exported %d hotstrings to %s\n", n, outputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputPath, "out", "", "output path (default: slugified bundle name + .kodex)")
	return cmd
}
