package check

import (
	"github.com/eleven-am/conncheck/internal/domain"
	"github.com/eleven-am/conncheck/internal/rules"
)

// Report is the outcome of one connectivity check. Evaluation is nil when
// the VPC gate short-circuited.
type Report struct {
	Source     *domain.ResourceInfo
	Dest       *domain.ResourceInfo
	Port       int
	SameVPC    bool
	Evaluation *rules.Evaluation
}

// Reachable reports whether a path was definitively established. Absence of
// a success message means not reachable, whether or not a failure message or
// any diagnostics exist.
func (r *Report) Reachable() bool {
	return r.SameVPC && r.Evaluation != nil && r.Evaluation.Success != ""
}

// ResultLines renders the evaluation outcome for display: the success
// message, the failure message, or the accumulated near-miss diagnostics.
func (r *Report) ResultLines() []string {
	if !r.SameVPC || r.Evaluation == nil {
		return nil
	}
	if r.Evaluation.Success != "" {
		return []string{r.Evaluation.Success}
	}
	if r.Evaluation.Failure != "" {
		return []string{r.Evaluation.Failure}
	}
	return r.Evaluation.ContextMessages()
}
