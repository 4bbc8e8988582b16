package rules

import (
	"fmt"

	"github.com/eleven-am/conncheck/internal/domain"
)

// EgressRule permits outbound traffic from its owning security group to a
// destination address block on a range of ports. Protocol is carried for
// diagnostics but not consulted during matching; see CanConnectTo.
type EgressRule struct {
	GroupID     string
	RuleID      string
	Protocol    string
	Ports       domain.PortRange
	Destination domain.AddressBlock
}

// allows reports whether the rule permits traffic to destBlock on port. A
// rule whose destination contains the block but whose port range excludes
// the port records a near-miss on the evaluation and does not match.
func (r EgressRule) allows(destBlock domain.AddressBlock, port uint16, ev *Evaluation) bool {
	if !r.Destination.IsValid() || !r.Destination.Contains(destBlock) {
		return false
	}
	if r.Ports.Contains(port) {
		return true
	}
	ev.AddContext(fmt.Sprintf("egress rule %s allows %s but not port %d", r.RuleID, destBlock, port))
	return false
}

// IngressRule permits inbound traffic to its owning security group from a
// referenced security group, from a source address block, or both. A rule
// with neither target present never matches.
type IngressRule struct {
	GroupID       string
	RuleID        string
	Protocol      string
	Ports         domain.PortRange
	SourceGroupID string
	SourceBlock   domain.AddressBlock
}

// allows checks the group-based target first and the CIDR-based target
// second, recording a near-miss for each target that matches the source but
// not the port. A successful match records the success message and wins.
func (r IngressRule) allows(srcGroupID string, srcBlock domain.AddressBlock, port uint16, ev *Evaluation) bool {
	if r.SourceGroupID != "" && srcGroupID != "" && r.SourceGroupID == srcGroupID {
		if r.Ports.Contains(port) {
			ev.MarkSuccess(fmt.Sprintf("%s has group-based rule %s that allows %s on port %d",
				r.GroupID, r.RuleID, srcGroupID, port))
			return true
		}
		ev.AddContext(fmt.Sprintf("%s has group-based rule %s that allows %s but not on port %d",
			r.GroupID, r.RuleID, srcGroupID, port))
	}
	if r.SourceBlock.IsValid() && srcBlock.IsValid() && r.SourceBlock.Contains(srcBlock) {
		if r.Ports.Contains(port) {
			ev.MarkSuccess(fmt.Sprintf("%s has cidr-based rule %s that allows %s on port %d",
				r.GroupID, r.RuleID, srcBlock, port))
			return true
		}
		ev.AddContext(fmt.Sprintf("%s has cidr-based rule %s that allows %s but not on port %d",
			r.GroupID, r.RuleID, srcBlock, port))
	}
	return false
}
