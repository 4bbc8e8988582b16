package rules

import (
	"fmt"
	"sort"

	"github.com/eleven-am/conncheck/internal/domain"
)

// RuleSet aggregates the security group rules attached to one resource. In
// practice a set is used for either the egress rules of a source or the
// ingress rules of a destination, not both at once.
//
// RuleSets are built once from freshly fetched provider data and then read
// only; they are not safe for concurrent mutation.
type RuleSet struct {
	groupIDs map[string]struct{}
	egress   []EgressRule
	ingress  []IngressRule
}

func NewRuleSet() *RuleSet {
	return &RuleSet{groupIDs: make(map[string]struct{})}
}

// AddEgressRule registers one outbound rule. dest may be the zero
// AddressBlock when the rule carries no IPv4 target; such rules never match.
func (rs *RuleSet) AddEgressRule(groupID, ruleID, protocol string, ports domain.PortRange, dest domain.AddressBlock) *RuleSet {
	rs.groupIDs[groupID] = struct{}{}
	rs.egress = append(rs.egress, EgressRule{
		GroupID:     groupID,
		RuleID:      ruleID,
		Protocol:    protocol,
		Ports:       ports,
		Destination: dest,
	})
	return rs
}

// AddIngressRule registers one inbound rule. Either, both, or neither of
// srcGroupID and srcBlock may be present.
func (rs *RuleSet) AddIngressRule(groupID, ruleID, protocol string, ports domain.PortRange, srcGroupID string, srcBlock domain.AddressBlock) *RuleSet {
	rs.groupIDs[groupID] = struct{}{}
	rs.ingress = append(rs.ingress, IngressRule{
		GroupID:       groupID,
		RuleID:        ruleID,
		Protocol:      protocol,
		Ports:         ports,
		SourceGroupID: srcGroupID,
		SourceBlock:   srcBlock,
	})
	return rs
}

// GroupIDs returns the security group IDs whose rules this set aggregates,
// sorted for stable rendering.
func (rs *RuleSet) GroupIDs() []string {
	ids := make([]string, 0, len(rs.groupIDs))
	for id := range rs.groupIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (rs *RuleSet) EgressRules() []EgressRule {
	return rs.egress
}

func (rs *RuleSet) IngressRules() []IngressRule {
	return rs.ingress
}

// CanConnectTo determines whether a resource governed by this rule set,
// addressed by srcBlock, can connect to a resource at destBlock:port governed
// by dest. The egress rules are checked first; a definitive egress block
// skips the ingress scan entirely, since a packet that cannot leave the
// source can never arrive. Protocol tags are not consulted, only port
// ranges.
//
// When multiple rules would permit the connection, one is reported
// arbitrarily: source groups are visited in map order and the first matching
// ingress rule wins.
func (rs *RuleSet) CanConnectTo(srcBlock, destBlock domain.AddressBlock, port uint16, dest *RuleSet) *Evaluation {
	ev := NewEvaluation()
	rs.checkEgress(destBlock, port, ev)
	if ev.Failure != "" {
		return ev
	}
	rs.checkIngress(srcBlock, port, dest, ev)
	return ev
}

func (rs *RuleSet) checkEgress(destBlock domain.AddressBlock, port uint16, ev *Evaluation) {
	for _, rule := range rs.egress {
		if rule.allows(destBlock, port, ev) {
			return
		}
	}
	ev.MarkFailure(fmt.Sprintf("no egress rule allows connections to %s port %d", destBlock, port))
}

func (rs *RuleSet) checkIngress(srcBlock domain.AddressBlock, port uint16, dest *RuleSet, ev *Evaluation) {
	for groupID := range rs.groupIDs {
		for _, rule := range dest.ingress {
			if rule.allows(groupID, srcBlock, port, ev) {
				return
			}
		}
	}
}
