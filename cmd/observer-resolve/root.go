package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/registry"
	"github.com/aalemi-dev/observer-lab/resolver"
)

// errUnresolved is returned by resolve when at least one name failed.
var errUnresolved = errors.New("some candidates could not be resolved")

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "observer-resolve",
		Short:         "Resolve which observers are interested in a class",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load OBSERVER_* variables from this .env file")

	cmd.AddCommand(
		newResolveCmd(opts),
		newCompileCmd(opts),
		newPublishCmd(opts),
		newImportCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

func newResolveCmd(root *rootOptions) *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "resolve --snapshot FILE NAME...",
		Short: "Print the observers interested in each named class",
		Long: `Builds a resolver from a snapshot file, using the classes listed in the
snapshot as metadata, and prints the sorted observer IDs for every NAME.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.envFile)
			if err != nil {
				return err
			}
			snap, err := registry.LoadFile(snapshotPath)
			if err != nil {
				return err
			}
			index, err := snap.Index(metadata.WithRootType(cfg.Resolver.UniversalType))
			if err != nil {
				return err
			}
			r, err := resolver.New(cfg.Resolver, index, snap.Observers())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, name := range args {
				set, err := r.Resolve(cmd.Context(), name)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s\terror: %v\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", name, strings.Join(registry.IDs(set.Slice()), ","))
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errUnresolved, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "observer registry snapshot (.yaml or .json)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func newCompileCmd(root *rootOptions) *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "compile --snapshot FILE",
		Short: "Show how each observer in a snapshot is compiled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.envFile)
			if err != nil {
				return err
			}
			snap, err := registry.LoadFile(snapshotPath)
			if err != nil {
				return err
			}
			compiled, err := resolver.Compile(cfg.Resolver, snap.Observers())
			if err != nil {
				return err
			}
			writeCompiled(cmd.OutOrStdout(), snap.Definitions, compiled)
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "observer registry snapshot (.yaml or .json)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

// writeCompiled prints one line per definition, in registry order.
func writeCompiled(w io.Writer, defs registry.Definitions, compiled *resolver.Compiled) {
	lines := make(map[resolver.Observer]string, len(defs))
	for _, o := range compiled.Universal {
		lines[o] = "universal"
	}
	for _, e := range compiled.Entries {
		line := e.Pattern.String()
		if len(e.Required) > 0 {
			required := append([]string(nil), e.Required...)
			sort.Strings(required)
			line += " requires " + strings.Join(required, "|")
		}
		lines[e.Observer] = line
	}
	for _, s := range compiled.Skipped {
		lines[s.Observer] = "skipped: " + s.Reason
	}

	for _, d := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.EventType, lines[d])
	}
}
