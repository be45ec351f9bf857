package cmd

import (
	"math"

	"github.com/spf13/cobra"
)

var plotHeight, plotWidth int

var plotCmd = &cobra.Command{
	Use:   "plot <model.yaml> <component.variable>...",
	Short: "Run a model and plot outputs in the terminal",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions{
			EndDate:    math.NaN(),
			RestartAt:  math.NaN(),
			Plots:      args[1:],
			PlotHeight: plotHeight,
			PlotWidth:  plotWidth,
		}
		return runModel(args[0], opts, cmd.OutOrStdout())
	},
}

func init() {
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "Plot height in rows")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "Plot width in columns")

	rootCmd.AddCommand(plotCmd)
}
