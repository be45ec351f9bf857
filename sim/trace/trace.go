package trace

// TraceLevel controls the verbosity of message tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelMessages captures every routed message and every core step.
	TraceLevelMessages TraceLevel = "messages"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelMessages: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects message and step records during a run.
type SimulationTrace struct {
	Config   TraceConfig
	Messages []MessageRecord
	Steps    []StepRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:   config,
		Messages: make([]MessageRecord, 0),
		Steps:    make([]StepRecord, 0),
	}
}

// Enabled reports whether records are kept. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelMessages
}

// RecordMessage appends a message record.
func (st *SimulationTrace) RecordMessage(record MessageRecord) {
	if !st.Enabled() {
		return
	}
	st.Messages = append(st.Messages, record)
}

// RecordStep appends a step record.
func (st *SimulationTrace) RecordStep(record StepRecord) {
	if !st.Enabled() {
		return
	}
	st.Steps = append(st.Steps, record)
}
