// Package trace records the message traffic between components during a run.
// It has no dependency on sim/ and stores pure data types.
package trace

// MessageRecord captures one message delivered by the core.
type MessageRecord struct {
	Clock    float64 // core date when the message was sent
	Caller   string  // sending component; empty for messages from outside the core
	Target   string  // component that handled the message
	Type     string  // getData or setData
	Variable string
	Date     float64 // message date; -Inf when the variable is date-independent
	Err      string  // empty when delivery succeeded
}

// StepRecord captures one completed core step.
type StepRecord struct {
	Date       float64
	Components int
}
