package sim

import (
	"sort"

	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/units"
)

// Variable describes one message-addressable variable of component type C.
// A nil Get makes the variable write-only; a nil Set makes it read-only.
type Variable[C any] struct {
	Unit        units.Unit
	Dated       bool // true: requires a date; false: requires UndefinedIndex
	Description string
	Get         func(c *C, date float64) (units.Value, error)
	Set         func(c *C, date float64, v units.Value) error
}

// VarInfo is the read-only description of a variable, for listings and visitors.
type VarInfo struct {
	Name        string
	Unit        units.Unit
	Dated       bool
	Readable    bool
	Settable    bool
	Description string
}

// Registry maps variable names to accessors for one component type. Build it once per
// type (a package-level var) and share it between instances.
type Registry[C any] struct {
	kind string
	vars map[string]Variable[C]
}

func NewRegistry[C any](kind string, vars map[string]Variable[C]) *Registry[C] {
	return &Registry[C]{kind: kind, vars: vars}
}

// Get reads name from c, enforcing the variable's date mode.
func (r *Registry[C]) Get(c *C, name string, date float64) (units.Value, error) {
	v, ok := r.vars[name]
	if !ok || v.Get == nil {
		return units.Value{}, simerr.New(simerr.UnknownVariable, "%s: caller is requesting unknown variable: %s", r.kind, name)
	}
	if err := r.checkDate(name, v.Dated, date); err != nil {
		return units.Value{}, err
	}
	return v.Get(c, date)
}

// Set parses data into name's unit and stores it in c.
func (r *Registry[C]) Set(c *C, name string, data MessageData) error {
	v, ok := r.vars[name]
	if !ok || v.Set == nil {
		return simerr.New(simerr.UnknownVariable, "unknown variable name while parsing %s: %s", r.kind, name)
	}
	if err := r.checkDate(name, v.Dated, data.Date); err != nil {
		return err
	}
	val, err := parseValue(name, v.Unit, data)
	if err != nil {
		return err
	}
	return v.Set(c, data.Date, val)
}

// Variables lists the registry in name order.
func (r *Registry[C]) Variables() []VarInfo {
	out := make([]VarInfo, 0, len(r.vars))
	for name, v := range r.vars {
		out = append(out, VarInfo{
			Name:        name,
			Unit:        v.Unit,
			Dated:       v.Dated,
			Readable:    v.Get != nil,
			Settable:    v.Set != nil,
			Description: v.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry[C]) checkDate(name string, dated bool, date float64) error {
	if dated && IsUndefined(date) {
		return simerr.New(simerr.InvalidDate, "%s: date required for %s", r.kind, name)
	}
	if dated && !IsValidDate(date) {
		return simerr.New(simerr.InvalidDate, "%s: invalid date %g for %s", r.kind, date, name)
	}
	if !dated && !IsUndefined(date) {
		return simerr.New(simerr.InvalidDate, "%s: date not allowed for %s", r.kind, name)
	}
	return nil
}

func parseValue(name string, unit units.Unit, data MessageData) (units.Value, error) {
	if data.ValueStr == "" {
		if !data.HasValue {
			return units.Value{}, simerr.New(simerr.InvalidValue, "no value supplied for %s", name)
		}
		if data.Value.Unit() != unit {
			return units.Value{}, simerr.New(simerr.UnitMismatch, "value for %s has units %s, expected %s",
				name, data.Value.Unit(), unit)
		}
		return data.Value, nil
	}
	val, err := units.Parse(data.ValueStr, unit)
	if err != nil {
		return units.Value{}, simerr.Rethrow(err, "could not convert var: "+name+", value: "+data.ValueStr)
	}
	return val, nil
}
