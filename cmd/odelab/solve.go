package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/odelab/internal/ode"
)

func newSolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "solve [method] [equation]",
		Short: "Solve an ordinary differential equation",
		Long: `Solve an ordinary differential equation with one of the methods:
separation, integrating_factor, characteristic, undetermined.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, equation := args[0], args[1]

			solution, err := ode.NewSolver().Solve(method, equation, nil)
			if err != nil {
				color.Red("Could not solve %q: %v", equation, err)
				return err
			}

			color.Green("y(x) = %s", solution.Latex)
			for i, step := range solution.Steps {
				fmt.Printf("  %d. %s\n", i+1, step)
			}
			return nil
		},
	}
}
