package agent

// IterationState tracks loop state across iterations of one run.
type IterationState struct {
	CurrentIteration int
	MaxIterations    int

	// BestPartial is the most recent non-empty assistant text. Returned when
	// the budget runs out without a final answer.
	BestPartial string

	ToolCalls []ToolCallRecord

	ConsecutiveToolFailures int
}

// RemainingToolIterations returns how many more LLM calls may still carry
// tools. One call is always reserved for the forced conclusion.
func (s *IterationState) RemainingToolIterations() int {
	n := s.MaxIterations - 1 - s.CurrentIteration
	if n < 0 {
		return 0
	}
	return n
}

// RecordText remembers text produced alongside tool calls as the best
// partial answer so far.
func (s *IterationState) RecordText(text string) {
	if text != "" {
		s.BestPartial = text
	}
}

// RecordToolCall appends a tool invocation and tracks consecutive failures.
func (s *IterationState) RecordToolCall(name string, isError bool) {
	s.ToolCalls = append(s.ToolCalls, ToolCallRecord{Name: name, IsError: isError})
	if isError {
		s.ConsecutiveToolFailures++
	} else {
		s.ConsecutiveToolFailures = 0
	}
}
