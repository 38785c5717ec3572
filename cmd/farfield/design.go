package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/farfield/export"
	"github.com/wiless/farfield/table"
)

func newDesignCmd() *cobra.Command {
	var (
		er, h, freq float64
		out, plot   string
	)
	cmd := &cobra.Command{
		Use:   "design",
		Short: "design a lambda/2 rectangular patch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("er") {
				er = cfg.Patch.Er
			}
			if !cmd.Flags().Changed("h") {
				h = cfg.Patch.H
			}
			if !cmd.Flags().Changed("freq") {
				freq = cfg.FreqHz
			}
			g, err := antenna.DesignPatch(er, h, freq)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "W=%.6e m\nL=%.6e m\n", g.W, g.L)
			if plot != "" {
				// the element alone, E-plane and H-plane
				fields := antenna.PatchFields(farfield.NPhi, farfield.NTheta, freq, g)
				if err := export.SaveCutsPNG(plot, farfield.FieldGrid(fields), freq); err != nil {
					return err
				}
			}
			if out == "" {
				return nil
			}
			return table.SavePhysics(out, table.Physics{FreqHz: freq, W: g.W, L: g.L, H: g.H, Er: g.Er})
		},
	}
	cmd.Flags().Float64Var(&er, "er", 0, "substrate relative permittivity")
	cmd.Flags().Float64Var(&h, "h", 0, "substrate height (m)")
	cmd.Flags().Float64Var(&freq, "freq", 0, "operating frequency (Hz)")
	cmd.Flags().StringVar(&out, "out", "", "also write the physics table to this file")
	cmd.Flags().StringVar(&plot, "plot", "", "plot the E-plane and H-plane cuts of the patch element into this PNG")
	return cmd
}
