package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalMessages        int
	GetCount             int
	SetCount             int
	ErrorCount           int
	Steps                int
	UniqueTargets        int
	TargetDistribution   map[string]int // component → messages handled
	VariableDistribution map[string]int // variable → messages naming it
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution:   make(map[string]int),
		VariableDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalMessages = len(st.Messages)
	summary.Steps = len(st.Steps)
	for _, m := range st.Messages {
		switch m.Type {
		case "getData":
			summary.GetCount++
		case "setData":
			summary.SetCount++
		}
		if m.Err != "" {
			summary.ErrorCount++
		}
		summary.TargetDistribution[m.Target]++
		summary.VariableDistribution[m.Variable]++
	}

	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
