package aws

import (
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/eleven-am/conncheck/internal/domain"
	"github.com/eleven-am/conncheck/internal/rules"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

// portBound unwraps a provider port bound. A nil bound appears on rules that
// apply to all ports, exactly like the -1 sentinel, so it maps to -1 and is
// normalized away by NewPortRange.
func portBound(v *int32) int {
	if v == nil {
		return -1
	}
	return int(*v)
}

// parseOptionalBlock parses a CIDR field that may be absent. An absent field
// yields the zero AddressBlock; a present but malformed one is an error the
// caller must propagate, never a silent mismatch.
func parseOptionalBlock(s *string) (domain.AddressBlock, error) {
	if s == nil || *s == "" {
		return domain.AddressBlock{}, nil
	}
	return domain.ParseAddressBlock(*s)
}

// appendSecurityGroupRule converts one provider rule into the rule set,
// keyed by its owning group. IPv6-only targets come through as absent IPv4
// blocks and are carried, not evaluated.
func appendSecurityGroupRule(set *rules.RuleSet, sgr ec2types.SecurityGroupRule) error {
	groupID := derefString(sgr.GroupId)
	ruleID := derefString(sgr.SecurityGroupRuleId)
	protocol := derefString(sgr.IpProtocol)
	ports := domain.NewPortRange(portBound(sgr.FromPort), portBound(sgr.ToPort))

	if derefBool(sgr.IsEgress) {
		dest, err := parseOptionalBlock(sgr.CidrIpv4)
		if err != nil {
			return err
		}
		set.AddEgressRule(groupID, ruleID, protocol, ports, dest)
		return nil
	}

	srcGroupID := ""
	if sgr.ReferencedGroupInfo != nil {
		srcGroupID = derefString(sgr.ReferencedGroupInfo.GroupId)
	}
	srcBlock, err := parseOptionalBlock(sgr.CidrIpv4)
	if err != nil {
		return err
	}
	set.AddIngressRule(groupID, ruleID, protocol, ports, srcGroupID, srcBlock)
	return nil
}

// toSubnet converts a provider subnet description. The route table and
// gateway fields are filled in by the VPC lookup from the route table
// associations.
func toSubnet(subnet ec2types.Subnet, rt domain.RouteTable) (domain.Subnet, error) {
	cidr, err := parseOptionalBlock(subnet.CidrBlock)
	if err != nil {
		return domain.Subnet{}, err
	}
	return domain.Subnet{
		VPCID:            derefString(subnet.VpcId),
		ID:               derefString(subnet.SubnetId),
		CIDR:             cidr,
		AvailabilityZone: derefString(subnet.AvailabilityZone),
		RouteTableID:     rt.ID,
		Gateway:          rt.Gateway,
	}, nil
}
