package sim

import (
	"math"

	"github.com/hector-sim/hector-core/sim/simerr"
	"github.com/hector-sim/hector-core/sim/units"
)

// MessageType selects what SendMessage does with a variable.
type MessageType string

const (
	GetData MessageType = "getData"
	SetData MessageType = "setData"
)

// UndefinedIndex is the date sentinel meaning "no date supplied". Date-independent
// variables must be read and written with exactly this value.
func UndefinedIndex() float64 { return math.Inf(-1) }

// IsUndefined reports whether date is the UndefinedIndex sentinel.
func IsUndefined(date float64) bool { return math.IsInf(date, -1) }

// IsValidDate reports whether date is a finite simulation date. The sentinel is not one.
func IsValidDate(date float64) bool { return !math.IsNaN(date) && !math.IsInf(date, 0) }

// MessageData is the payload of a message. ValueStr carries SetData input in text
// form; Value carries a unit-tagged value when HasValue is set.
type MessageData struct {
	Date     float64
	ValueStr string
	Value    units.Value
	HasValue bool
}

// NoDate builds a SetData payload for a date-independent variable.
func NoDate(valueStr string) MessageData {
	return MessageData{Date: UndefinedIndex(), ValueStr: valueStr}
}

// AtDate builds a SetData payload for a dated variable.
func AtDate(date float64, valueStr string) MessageData {
	return MessageData{Date: date, ValueStr: valueStr}
}

// Query builds a GetData payload; pass UndefinedIndex() for date-independent variables.
func Query(date float64) MessageData {
	return MessageData{Date: date}
}

// WithValue builds a SetData payload from an already unit-tagged value.
func WithValue(date float64, v units.Value) MessageData {
	return MessageData{Date: date, Value: v, HasValue: true}
}

// Dispatch is the shared SendMessage implementation: it forwards GetData and SetData
// to the component and rejects anything else with UnknownMessage.
func Dispatch(c Component, msg MessageType, varName string, data MessageData) (units.Value, error) {
	switch msg {
	case GetData:
		return c.GetData(varName, data.Date)
	case SetData:
		return units.Value{}, c.SetData(varName, data)
	default:
		return units.Value{}, simerr.New(simerr.UnknownMessage, "%s: caller sent unknown message: %s", c.Name(), msg)
	}
}
