// Package visitors holds read-only output extractors that walk a core and its
// components: a CSV output stream, a restart snapshot and a series recorder.
package visitors

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/components"
	"github.com/hector-sim/hector-core/sim/units"
)

// CSVHeader is the column layout written by CSVOutput.
var CSVHeader = []string{"run_id", "date", "component", "variable", "value", "units"}

// CSVOutput streams one row per output variable per component for every visited date.
type CSVOutput struct {
	w      *csv.Writer
	closer io.Closer

	// Every limits output to dates that are whole multiples of it; 0 writes every date.
	Every float64

	runID       string
	date        float64
	wroteHeader bool
}

// NewCSVOutput writes to w. The caller owns w.
func NewCSVOutput(w io.Writer) *CSVOutput {
	return &CSVOutput{w: csv.NewWriter(w)}
}

// CreateCSVOutput creates (or truncates) path and writes to it. Close releases the file.
func CreateCSVOutput(path string) (*CSVOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating csv output: %w", err)
	}
	o := NewCSVOutput(f)
	o.closer = f
	return o, nil
}

func (o *CSVOutput) ShouldVisit(date float64) bool {
	if o.Every <= 0 {
		return true
	}
	q := date / o.Every
	return math.Abs(q-math.Round(q)) < 1e-9
}

func (o *CSVOutput) VisitCore(c *sim.Core) error {
	o.runID = c.RunID()
	o.date = c.CurrentDate()
	if !o.wroteHeader {
		o.wroteHeader = true
		return o.w.Write(CSVHeader)
	}
	return nil
}

func (o *CSVOutput) VisitDummy(d *components.Dummy) error {
	if err := o.row(d.Name(), "y", units.UnitlessValue(d.Y())); err != nil {
		return err
	}
	if err := o.row(d.Name(), "slope", units.UnitlessValue(d.Slope())); err != nil {
		return err
	}
	if c, err := d.Forcing().Get(o.date); err == nil {
		return o.row(d.Name(), "c", units.UnitlessValue(c))
	}
	return nil
}

// VisitTable writes every series that covers the current date.
func (o *CSVOutput) VisitTable(t *components.Table) error {
	for _, name := range t.SeriesNames() {
		v, err := t.Series(name).Get(o.date)
		if err != nil {
			continue
		}
		if err := o.row(t.Name(), name, v); err != nil {
			return err
		}
	}
	return nil
}

// VisitComponent writes the readable date-independent variables of any other kind.
func (o *CSVOutput) VisitComponent(c sim.Component) error {
	for _, vi := range c.Variables() {
		if !vi.Readable || vi.Dated {
			continue
		}
		v, err := c.GetData(vi.Name, sim.UndefinedIndex())
		if err != nil {
			return err
		}
		if err := o.row(c.Name(), vi.Name, v); err != nil {
			return err
		}
	}
	return nil
}

func (o *CSVOutput) row(component, variable string, v units.Value) error {
	return o.w.Write([]string{
		o.runID,
		strconv.FormatFloat(o.date, 'g', -1, 64),
		component,
		variable,
		strconv.FormatFloat(v.Value(), 'g', -1, 64),
		v.Unit().String(),
	})
}

// Close flushes buffered rows and closes the file opened by CreateCSVOutput.
func (o *CSVOutput) Close() error {
	o.w.Flush()
	if err := o.w.Error(); err != nil {
		return fmt.Errorf("writing csv output: %w", err)
	}
	if o.closer != nil {
		return o.closer.Close()
	}
	return nil
}
