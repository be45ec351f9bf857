package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hector-sim/hector-core/sim"
)

var varsCmd = &cobra.Command{
	Use:   "vars [kind]",
	Short: "List the variables a component kind accepts",
	Long:  "Without arguments, list the registered component kinds. With a kind, list its fixed variables.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, k := range sim.KindNames() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		}
		return writeVars(cmd.OutOrStdout(), args[0])
	},
}

func writeVars(out io.Writer, kind string) error {
	comp, err := sim.NewComponent(kind, kind)
	if err != nil {
		return err
	}
	vars := comp.Variables()
	if len(vars) == 0 {
		fmt.Fprintf(out, "%s: no fixed variables; any dated name set in the model becomes a series\n", kind)
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUNITS\tDATED\tACCESS\tDESCRIPTION")
	for _, v := range vars {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", v.Name, v.Unit, v.Dated, access(v), v.Description)
	}
	return w.Flush()
}

func access(v sim.VarInfo) string {
	switch {
	case v.Readable && v.Settable:
		return "rw"
	case v.Readable:
		return "r"
	default:
		return "w"
	}
}

func init() {
	rootCmd.AddCommand(varsCmd)
}
