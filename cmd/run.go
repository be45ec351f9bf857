package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/trace"
	"github.com/hector-sim/hector-core/sim/visitors"
)

// runOptions are the CLI overrides applied on top of a model file. Zero values leave
// the model's own settings in place.
type runOptions struct {
	EndDate     float64 // NaN keeps the model's end_date
	CSVPath     string
	CSVEvery    float64
	RestartPath string
	RestartAt   float64 // NaN captures at the end date
	ResumePath  string
	Trace       string
	Plots       []string
	PlotHeight  int
	PlotWidth   int
}

var runOpts = runOptions{EndDate: math.NaN(), RestartAt: math.NaN()}

// runCmd executes a model file
var runCmd = &cobra.Command{
	Use:   "run <model.yaml>",
	Short: "Run a model file to its end date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOpts
		if !cmd.Flags().Changed("end") {
			opts.EndDate = math.NaN()
		}
		if !cmd.Flags().Changed("restart-at") {
			opts.RestartAt = math.NaN()
		}
		return runModel(args[0], opts, cmd.OutOrStdout())
	},
}

// loadRunConfig reads the model file and applies the CLI overrides, including a resume
// from a restart snapshot.
func loadRunConfig(path string, opts runOptions) (*sim.ModelConfig, error) {
	cfg, err := sim.LoadModelConfig(path)
	if err != nil {
		return nil, err
	}
	if !math.IsNaN(opts.EndDate) {
		cfg.Core.EndDate = opts.EndDate
	}
	if opts.Trace != "" {
		cfg.Core.Trace = opts.Trace
	}
	if opts.CSVPath != "" {
		cfg.Output.CSV = opts.CSVPath
	}
	if opts.RestartPath != "" {
		cfg.Output.Restart = opts.RestartPath
	}
	if opts.ResumePath != "" {
		snap, err := visitors.LoadSnapshot(opts.ResumePath)
		if err != nil {
			return nil, err
		}
		if err := snap.Resume(cfg); err != nil {
			return nil, err
		}
		logrus.Infof("resuming run %s from date %g", snap.RunID, snap.Date)
	}
	return cfg, nil
}

// runModel builds the model, attaches the requested outputs, executes the run and
// reports trace and plot results to out.
func runModel(path string, opts runOptions, out io.Writer) (err error) {
	cfg, err := loadRunConfig(path, opts)
	if err != nil {
		return err
	}
	targets := make([]visitors.Target, 0, len(opts.Plots))
	for _, p := range opts.Plots {
		t, err := visitors.ParseTarget(p)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}

	core, err := sim.BuildCore(cfg)
	if err != nil {
		return err
	}

	var csvOut *visitors.CSVOutput
	if cfg.Output.CSV != "" {
		csvOut, err = visitors.CreateCSVOutput(cfg.Output.CSV)
		if err != nil {
			return errors.Join(err, core.ShutDown())
		}
		csvOut.Every = opts.CSVEvery
		core.AddVisitor(csvOut)
		defer func() {
			if cerr := csvOut.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()
	}

	var restart *visitors.Restart
	if cfg.Output.Restart != "" {
		at := opts.RestartAt
		if math.IsNaN(at) {
			at = cfg.Core.EndDate
		}
		restart = visitors.NewRestart(at)
		core.AddVisitor(restart)
	}

	var rec *visitors.Recorder
	if len(targets) > 0 {
		rec = visitors.NewRecorder(targets...)
		core.AddVisitor(rec)
	}

	logrus.Infof("starting run %q (%s), dates %g to %g step %g",
		core.RunName(), core.RunID(), cfg.Core.StartDate, cfg.Core.EndDate, cfg.Core.Step)
	startTime := time.Now()
	if err := core.Execute(); err != nil {
		return err
	}
	logrus.Infof("run complete in %s", time.Since(startTime))

	if restart != nil {
		if err := restart.Write(cfg.Output.Restart); err != nil {
			return err
		}
		logrus.Infof("restart written to %s", cfg.Output.Restart)
	}
	if core.Trace().Enabled() {
		printTraceSummary(out, trace.Summarize(core.Trace()))
	}
	for _, t := range targets {
		if err := printPlot(out, rec, t, opts.PlotHeight, opts.PlotWidth); err != nil {
			return err
		}
	}
	return nil
}

func printTraceSummary(out io.Writer, s *trace.TraceSummary) {
	fmt.Fprintf(out, "=== Message Trace ===\n")
	fmt.Fprintf(out, "Messages: %d (get %d, set %d, failed %d)\n", s.TotalMessages, s.GetCount, s.SetCount, s.ErrorCount)
	fmt.Fprintf(out, "Steps: %d\n", s.Steps)
	fmt.Fprintf(out, "Targets: %d\n", s.UniqueTargets)
}

func printPlot(out io.Writer, rec *visitors.Recorder, t visitors.Target, height, width int) error {
	chart, err := rec.Plot(t, height, width)
	if err != nil {
		return err
	}
	st, err := rec.Summary(t)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, chart)
	fmt.Fprintf(out, "%s: n=%d mean=%.6g sd=%.6g min=%.6g max=%.6g last=%.6g\n\n",
		t, st.N, st.Mean, st.StdDev, st.Min, st.Max, st.Last)
	return nil
}

func init() {
	runCmd.Flags().Float64Var(&runOpts.EndDate, "end", 0, "Override the model end date")
	runCmd.Flags().StringVar(&runOpts.CSVPath, "csv", "", "Write a CSV output stream to this path")
	runCmd.Flags().Float64Var(&runOpts.CSVEvery, "csv-every", 0, "Write CSV rows only for dates that are multiples of this (0 = every step)")
	runCmd.Flags().StringVar(&runOpts.RestartPath, "restart", "", "Write a restart snapshot to this path")
	runCmd.Flags().Float64Var(&runOpts.RestartAt, "restart-at", 0, "Date of the restart snapshot (default: end date)")
	runCmd.Flags().StringVar(&runOpts.ResumePath, "resume", "", "Continue from a restart snapshot")
	runCmd.Flags().StringVar(&runOpts.Trace, "trace", "", "Message trace level (none, messages)")
	runCmd.Flags().StringArrayVar(&runOpts.Plots, "plot", nil, "Plot component.variable after the run (can be repeated)")
	runCmd.Flags().IntVar(&runOpts.PlotHeight, "plot-height", 12, "Plot height in rows")
	runCmd.Flags().IntVar(&runOpts.PlotWidth, "plot-width", 70, "Plot width in columns")

	rootCmd.AddCommand(runCmd)
}
