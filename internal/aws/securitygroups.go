package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/eleven-am/conncheck/internal/rules"
)

// GetSecurityGroupRules retrieves and combines the rules attached to the
// given security groups into one RuleSet. An empty group list yields an
// empty set; a group that does not exist is an error.
func (c *Client) GetSecurityGroupRules(ctx context.Context, groupIDs []string) (*rules.RuleSet, error) {
	set := rules.NewRuleSet()
	if len(groupIDs) == 0 {
		return set, nil
	}

	out, err := c.ec2Client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: groupIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("describe security groups %v: %w", groupIDs, err)
	}

	for _, sg := range out.SecurityGroups {
		groupID := derefString(sg.GroupId)
		sgRules, err := c.describeRulesForGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		for _, sgr := range sgRules {
			if err := appendSecurityGroupRule(set, sgr); err != nil {
				return nil, fmt.Errorf("security group %s: %w", groupID, err)
			}
		}
	}
	return set, nil
}

func (c *Client) describeRulesForGroup(ctx context.Context, groupID string) ([]ec2types.SecurityGroupRule, error) {
	input := &ec2.DescribeSecurityGroupRulesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("group-id"), Values: []string{groupID}},
		},
	}
	paginator := ec2.NewDescribeSecurityGroupRulesPaginator(c.ec2Client, input)
	sgRules, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeSecurityGroupRulesOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeSecurityGroupRulesOutput) []ec2types.SecurityGroupRule {
			return out.SecurityGroupRules
		},
	)
	if err != nil {
		return nil, fmt.Errorf("describe rules for security group %s: %w", groupID, err)
	}
	return sgRules, nil
}
