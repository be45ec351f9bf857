package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelMessages})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	assert.Zero(t, summary.TotalMessages)
	assert.Zero(t, summary.GetCount)
	assert.Zero(t, summary.SetCount)
	assert.Zero(t, summary.ErrorCount)
	assert.Zero(t, summary.UniqueTargets)
	assert.Empty(t, summary.TargetDistribution)
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.TotalMessages)
	assert.NotNil(t, summary.VariableDistribution)
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with mixed gets, sets and one failure
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelMessages})
	st.RecordMessage(MessageRecord{Target: "dummy", Type: "setData", Variable: "slope"})
	st.RecordMessage(MessageRecord{Target: "dummy", Type: "setData", Variable: "y"})
	st.RecordMessage(MessageRecord{Target: "dummy", Type: "getData", Variable: "x"})
	st.RecordMessage(MessageRecord{Target: "forcing", Type: "getData", Variable: "x", Err: "boom"})
	st.RecordStep(StepRecord{Date: 1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	assert.Equal(t, 4, summary.TotalMessages)
	assert.Equal(t, 2, summary.GetCount)
	assert.Equal(t, 2, summary.SetCount)
	assert.Equal(t, 1, summary.ErrorCount)
	assert.Equal(t, 1, summary.Steps)
	assert.Equal(t, 2, summary.UniqueTargets)
}

func TestSummarize_Distributions_CountsPerTargetAndVariable(t *testing.T) {
	// GIVEN messages to the same target and variable multiple times
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelMessages})
	st.RecordMessage(MessageRecord{Target: "a", Variable: "x"})
	st.RecordMessage(MessageRecord{Target: "a", Variable: "x"})
	st.RecordMessage(MessageRecord{Target: "b", Variable: "y"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN distributions reflect counts
	assert.Equal(t, 2, summary.TargetDistribution["a"])
	assert.Equal(t, 1, summary.TargetDistribution["b"])
	assert.Equal(t, 2, summary.VariableDistribution["x"])
	assert.Equal(t, 1, summary.VariableDistribution["y"])
}
