package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/odelab/internal/phase"
)

func newPortraitCommand() *cobra.Command {
	var (
		dxdt       string
		dydt       string
		outputFile string
	)

	command := &cobra.Command{
		Use:   "portrait [type]",
		Short: "Render a phase portrait to a PNG file",
		Long: `Render a phase portrait of a two-dimensional autonomous system.
Types: saddle, nodal_sink, spiral, center, custom.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			png, err := phase.NewRenderer().Render(phase.Request{
				Type:   args[0],
				DXdt:   dxdt,
				DYdt:   dydt,
				XRange: [2]float64{cfg.Portrait.XMin, cfg.Portrait.XMax},
				YRange: [2]float64{cfg.Portrait.YMin, cfg.Portrait.YMax},
			})
			if err != nil {
				color.Red("Could not render the portrait: %v", err)
				return err
			}

			if err := os.WriteFile(outputFile, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFile, err)
			}
			color.Green("Wrote %s", outputFile)
			return nil
		},
	}
	command.Flags().StringVar(&dxdt, "dx", "y", "dx/dt expression for the custom type")
	command.Flags().StringVar(&dydt, "dy", "-x - y", "dy/dt expression for the custom type")
	command.Flags().StringVar(&outputFile, "out", "portrait.png", "output PNG file path")

	return command
}
