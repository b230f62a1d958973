// Command profilectl checks profile documents offline: round-trip stability,
// container resolution against a catalog, and catalog contents.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	staticcatalog "rewardcore/internal/adapter/catalog/static"
	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/fulfillment"
	"rewardcore/internal/domain/gamestate"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "profilectl",
		Short:        "Inspect reward profile documents and container catalogs",
		SilenceUsage: true,
	}
	root.AddCommand(newValidateCmd(), newResolveCmd(), newContainersCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <profile.json>",
		Short: "Decode a profile and check that re-encoding it is stable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			report, err := validate(raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "placements: %d\nmodules: %d\n", report.placements, report.modules)
			if report.canonical {
				fmt.Fprintln(out, "document is canonical")
			} else {
				fmt.Fprintln(out, "document is stable but not canonical; re-encoded form differs from input")
			}
			return nil
		},
	}
}

type validateReport struct {
	placements int
	modules    int
	canonical  bool
}

// validate decodes, encodes, decodes and encodes again. The two encodings
// must match byte for byte.
func validate(raw []byte) (validateReport, error) {
	p, err := fulfillment.DecodeProfile(raw)
	if err != nil {
		return validateReport{}, fmt.Errorf("decode: %w", err)
	}
	first, err := fulfillment.EncodeProfile(p)
	if err != nil {
		return validateReport{}, fmt.Errorf("encode: %w", err)
	}
	again, err := fulfillment.DecodeProfile(first)
	if err != nil {
		return validateReport{}, fmt.Errorf("decode re-encoded document: %w", err)
	}
	second, err := fulfillment.EncodeProfile(again)
	if err != nil {
		return validateReport{}, fmt.Errorf("encode: %w", err)
	}
	if !bytes.Equal(first, second) {
		return validateReport{}, fmt.Errorf("document is not stable across a round trip")
	}
	return validateReport{
		placements: len(p.Placements()),
		modules:    len(p.Modules()),
		canonical:  bytes.Equal(bytes.TrimSpace(raw), first),
	}, nil
}

func newResolveCmd() *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "resolve <profile.json>",
		Short: "Load a profile into a sandbox host and print each placement's container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd.Context(), catalogPath)
			if err != nil {
				return err
			}
			rows, err := resolve(raw, reg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PLACEMENT\tCONTAINER\tRULE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.placement, r.container, r.rule)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "container catalog YAML file (built-in standard catalog when empty)")
	return cmd
}

type resolution struct {
	placement string
	container string
	rule      fulfillment.Rule
}

type resolutionLog struct {
	rows []resolution
}

func (l *resolutionLog) ContainerResolved(placement, name string, rule fulfillment.Rule) {
	l.rows = append(l.rows, resolution{placement: placement, container: name, rule: rule})
}

// resolve loads the profile the way entering a game does and returns the
// decisions in placement order. Hook faults are logged to logOut.
func resolve(raw []byte, reg *container.Registry, logOut io.Writer) ([]resolution, error) {
	p, err := fulfillment.DecodeProfile(raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	obs := &resolutionLog{}
	h, err := fulfillment.NewHost(fulfillment.HostConfig{
		Logger:     slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelWarn})),
		Containers: reg.Clone(),
		Game:       gamestate.NewLedger(),
		Observer:   obs,
	})
	if err != nil {
		return nil, err
	}
	if err := h.Attach(p); err != nil {
		return nil, err
	}
	loadErr := h.NotifyOnEnterGame()

	byName := make(map[string]resolution, len(obs.rows))
	for _, r := range obs.rows {
		byName[r.placement] = r
	}
	rows := make([]resolution, 0, len(p.Placements()))
	for _, pl := range p.Placements() {
		r, ok := byName[pl.PlacementName()]
		if !ok {
			r = resolution{placement: pl.PlacementName(), container: "-", rule: "unresolved"}
		}
		rows = append(rows, r)
	}
	return rows, loadErr
}

func newContainersCmd() *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "containers",
		Short: "Print the container registry a catalog builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(cmd.Context(), catalogPath)
			if err != nil {
				return err
			}
			return printRegistry(cmd.OutOrStdout(), reg)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "container catalog YAML file (built-in standard catalog when empty)")
	return cmd
}

func printRegistry(w io.Writer, reg *container.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tINSTANTIATE\tCAPABILITIES\tDEFAULT")
	for _, def := range reg.Definitions() {
		var role string
		switch {
		case def.Name == reg.DefaultSingle().Name && def.Name == reg.DefaultMulti().Name:
			role = "single,multi"
		case def.Name == reg.DefaultSingle().Name:
			role = "single"
		case def.Name == reg.DefaultMulti().Name:
			role = "multi"
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", def.Name, def.SupportsInstantiate, def.Capabilities, role)
	}
	return tw.Flush()
}

func loadRegistry(ctx context.Context, path string) (*container.Registry, error) {
	var (
		cat container.Catalog
		err error
	)
	if path == "" {
		if ctx == nil {
			ctx = context.Background()
		}
		cat, err = staticcatalog.Provider{}.Load(ctx, "standard")
	} else {
		var raw []byte
		raw, err = os.ReadFile(path)
		if err == nil {
			cat, err = staticcatalog.Parse(raw)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat.Build()
}
