package visitors

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/hector-sim/hector-core/sim"
	"github.com/hector-sim/hector-core/sim/components"
	"github.com/hector-sim/hector-core/sim/units"
)

// Snapshot is the state of every component at one date. Vars use the model input key
// convention ("name" or "name[date]"), so a snapshot can seed a new run.
type Snapshot struct {
	RunID      string              `yaml:"run_id"`
	RunName    string              `yaml:"run_name"`
	Date       float64             `yaml:"date"`
	Components []ComponentSnapshot `yaml:"components"`
}

// ComponentSnapshot is the restartable state of one component.
type ComponentSnapshot struct {
	Name string            `yaml:"name"`
	Kind string            `yaml:"kind"`
	Vars map[string]string `yaml:"vars"`
}

// Restart captures a Snapshot when the run reaches a given date.
type Restart struct {
	at       float64
	snapshot *Snapshot
}

// NewRestart captures the state at date at.
func NewRestart(at float64) *Restart {
	return &Restart{at: at}
}

// Snapshot returns the captured state, or nil if the date was never visited.
func (r *Restart) Snapshot() *Snapshot { return r.snapshot }

func (r *Restart) ShouldVisit(date float64) bool {
	return math.Abs(date-r.at) < 1e-9
}

func (r *Restart) VisitCore(c *sim.Core) error {
	r.snapshot = &Snapshot{RunID: c.RunID(), RunName: c.RunName(), Date: c.CurrentDate()}
	return nil
}

func (r *Restart) VisitDummy(d *components.Dummy) error {
	vars := map[string]string{
		"slope": formatFloat(d.Slope()),
		"y":     formatFloat(d.Y()),
	}
	c := d.Forcing()
	values := c.Values()
	for i, date := range c.Dates() {
		vars[dateKey("c", date)] = formatFloat(values[i])
	}
	r.add(d, vars)
	return nil
}

func (r *Restart) VisitTable(t *components.Table) error {
	vars := make(map[string]string)
	for _, name := range t.SeriesNames() {
		s := t.Series(name)
		values := s.Values()
		for i, date := range s.Dates() {
			vars[dateKey(name, date)] = formatValue(values[i])
		}
	}
	r.add(t, vars)
	return nil
}

// VisitComponent captures the settable date-independent variables of any other kind.
func (r *Restart) VisitComponent(c sim.Component) error {
	vars := make(map[string]string)
	for _, vi := range c.Variables() {
		if !vi.Readable || !vi.Settable || vi.Dated {
			continue
		}
		v, err := c.GetData(vi.Name, sim.UndefinedIndex())
		if err != nil {
			return err
		}
		vars[vi.Name] = formatValue(v)
	}
	r.add(c, vars)
	return nil
}

func (r *Restart) add(c sim.Component, vars map[string]string) {
	if r.snapshot == nil {
		return
	}
	r.snapshot.Components = append(r.snapshot.Components, ComponentSnapshot{Name: c.Name(), Kind: c.Kind(), Vars: vars})
}

// Write stores the captured snapshot as YAML.
func (r *Restart) Write(path string) error {
	if r.snapshot == nil {
		return fmt.Errorf("no restart captured at date %g", r.at)
	}
	return WriteSnapshot(path, r.snapshot)
}

// WriteSnapshot stores s as YAML at path.
func WriteSnapshot(path string, s *Snapshot) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding restart: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing restart: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by WriteSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading restart: %w", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing restart: %w", err)
	}
	return &s, nil
}

// Resume rewrites cfg to continue from the snapshot: the start date becomes the
// snapshot date and each snapshotted component's vars replace the configured ones.
// Components absent from the snapshot are left as configured.
func (s *Snapshot) Resume(cfg *sim.ModelConfig) error {
	if s.Date >= cfg.Core.EndDate {
		return fmt.Errorf("restart date %g is not before end date %g", s.Date, cfg.Core.EndDate)
	}
	byName := make(map[string]ComponentSnapshot, len(s.Components))
	for _, cs := range s.Components {
		byName[cs.Name] = cs
	}
	for i, cc := range cfg.Components {
		cs, ok := byName[cc.Name]
		if !ok {
			continue
		}
		if cs.Kind != cc.Kind {
			return fmt.Errorf("restart component %s has kind %s, model has %s", cc.Name, cs.Kind, cc.Kind)
		}
		cfg.Components[i].Vars = cs.Vars
	}
	cfg.Core.StartDate = s.Date
	return nil
}

func dateKey(name string, date float64) string {
	return name + "[" + formatFloat(date) + "]"
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// formatValue writes the value with its units unless it is unitless.
func formatValue(v units.Value) string {
	if v.Unit() == units.Unitless {
		return formatFloat(v.Value())
	}
	return v.String()
}
