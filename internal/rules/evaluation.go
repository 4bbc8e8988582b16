package rules

import "sort"

// Evaluation is the tri-state result of one reachability check: a definitive
// success message, a definitive failure message, or neither, plus a set of
// near-miss diagnostics. The evaluator sets at most one of Success/Failure;
// callers must treat an absent Success as "not reachable" even when Failure
// is also absent.
type Evaluation struct {
	Success string
	Failure string
	Context map[string]struct{}
}

func NewEvaluation() *Evaluation {
	return &Evaluation{Context: make(map[string]struct{})}
}

func (e *Evaluation) MarkSuccess(msg string) {
	e.Success = msg
}

func (e *Evaluation) MarkFailure(msg string) {
	e.Failure = msg
}

// AddContext records a near-miss diagnostic. Duplicate messages collapse.
func (e *Evaluation) AddContext(msg string) {
	e.Context[msg] = struct{}{}
}

// ContextMessages returns the diagnostics in sorted order for rendering; the
// underlying set is unordered.
func (e *Evaluation) ContextMessages() []string {
	msgs := make([]string, 0, len(e.Context))
	for msg := range e.Context {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return msgs
}
