package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/poolnav/pkg/export"
	"github.com/vanderheijden86/poolnav/pkg/inventory"
	"github.com/vanderheijden86/poolnav/pkg/logging"
	"github.com/vanderheijden86/poolnav/pkg/navigator"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// buildOnce loads every inventory and returns a controller holding the
// first tree of mode. An empty mode means the configured one.
func buildOnce(cmd *cobra.Command, opts *options, modeName string) (*session, *navigator.Controller, error) {
	s, err := openSession(opts, false)
	if err != nil {
		return nil, nil, err
	}
	mode := s.cfg.Get().Mode()
	if modeName != "" {
		if mode, err = tree.ParseMode(modeName); err != nil {
			s.Close()
			return nil, nil, err
		}
	}
	if err := s.load(cmd.Context()); err != nil {
		s.Close()
		return nil, nil, err
	}
	ctrl := s.controller(nil, nil, mode)
	ctrl.Rebuild()
	return s, ctrl, nil
}

func newDumpCmd(opts *options) *cobra.Command {
	var (
		modeName string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the navigation tree",
		Long: `Print the full navigation tree of one mode as an outline, or as JSON
with --json. Every node is printed regardless of its expansion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ctrl, err := buildOnce(cmd, opts, modeName)
			if err != nil {
				return err
			}
			defer s.Close()
			return dumpTree(cmd.OutOrStdout(), ctrl.Tree(), asJSON)
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "Navigation mode: infrastructure, objects, organization")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of an outline")
	return cmd
}

func dumpTree(w io.Writer, t *tree.Tree, asJSON bool) error {
	if asJSON {
		return export.WriteJSON(w, t)
	}
	return export.WriteOutline(w, t)
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		modeName string
		output   string
		title    string
	)
	cmd := &cobra.Command{
		Use:   "export-md",
		Short: "Write a Markdown report of the navigation tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ctrl, err := buildOnce(cmd, opts, modeName)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := export.SaveMarkdownToFile(ctrl.Tree(), s.store.Snapshot(), title, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (e.g. report.md)")
	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "Navigation mode: infrastructure, objects, organization")
	cmd.Flags().StringVar(&title, "title", "Pool Inventory", "Report title")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newConvertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert an inventory between YAML and SQLite",
		Long: `Convert an inventory file. The format of each side follows its
extension: .yaml/.yml or .db/.sqlite.`,
		Example: "  poolnav convert lab.yaml lab.db",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Init(logging.Config{Level: opts.logLevel, Format: opts.logFormat})
			defer logging.Shutdown()

			objs, err := inventory.Load(args[0])
			if err != nil {
				return err
			}
			if err := inventory.Write(args[1], objs); err != nil {
				return err
			}
			logger.Debug().Str("from", args[0]).Str("to", args[1]).Int("objects", len(objs)).Msg("Inventory converted")
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d objects to %s\n", len(objs), args[1])
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "poolnav %s\n", Version)
		},
	}
}
