package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/eleven-am/conncheck/internal/domain"
)

// GetVPC retrieves the VPC and its subnets, with each subnet annotated with
// its associated route table and the gateway of that table's default route.
func (c *Client) GetVPC(ctx context.Context, vpcID string) (*domain.VPC, error) {
	key := c.cacheKey("vpc", vpcID)
	if v, ok := c.cache.get(key); ok {
		return v.(*domain.VPC), nil
	}

	out, err := c.ec2Client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		VpcIds: []string{vpcID},
	})
	if err != nil {
		return nil, fmt.Errorf("describe vpc %s: %w", vpcID, err)
	}
	if len(out.Vpcs) == 0 {
		return nil, &domain.NotFoundError{Kind: "vpc", ID: vpcID}
	}

	routeTables, err := c.routeTablesBySubnet(ctx, vpcID)
	if err != nil {
		return nil, err
	}

	subnetOut, err := c.ec2Client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("describe subnets for vpc %s: %w", vpcID, err)
	}

	subnets := make(map[string]domain.Subnet, len(subnetOut.Subnets))
	for _, subnet := range subnetOut.Subnets {
		subnetID := derefString(subnet.SubnetId)
		converted, err := toSubnet(subnet, routeTables[subnetID])
		if err != nil {
			return nil, fmt.Errorf("subnet %s: %w", subnetID, err)
		}
		subnets[subnetID] = converted
	}

	vpc := &domain.VPC{ID: vpcID, Subnets: subnets}
	c.cache.set(key, vpc)
	return vpc, nil
}

// GetVPCBySubnet retrieves VPC information given the ID of one of its
// subnets. ECS service descriptions name subnets but not the VPC.
func (c *Client) GetVPCBySubnet(ctx context.Context, subnetID string) (*domain.VPC, error) {
	out, err := c.ec2Client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		SubnetIds: []string{subnetID},
	})
	if err != nil {
		return nil, fmt.Errorf("describe subnet %s: %w", subnetID, err)
	}
	if len(out.Subnets) == 0 {
		return nil, &domain.NotFoundError{Kind: "subnet", ID: subnetID}
	}
	return c.GetVPC(ctx, derefString(out.Subnets[0].VpcId))
}

// routeTablesBySubnet maps each associated subnet to its route table, with
// the gateway taken from the table's 0.0.0.0/0 route when one exists.
func (c *Client) routeTablesBySubnet(ctx context.Context, vpcID string) (map[string]domain.RouteTable, error) {
	out, err := c.ec2Client.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("describe route tables for vpc %s: %w", vpcID, err)
	}

	result := make(map[string]domain.RouteTable)
	for _, rt := range out.RouteTables {
		gateway := ""
		for _, route := range rt.Routes {
			if derefString(route.DestinationCidrBlock) != "0.0.0.0/0" {
				continue
			}
			gateway = derefString(route.GatewayId)
			if gateway == "" {
				gateway = derefString(route.NatGatewayId)
			}
		}
		table := domain.RouteTable{
			VPCID:   vpcID,
			ID:      derefString(rt.RouteTableId),
			Gateway: gateway,
		}
		for _, assoc := range rt.Associations {
			if assoc.AssociationState == nil || assoc.AssociationState.State != ec2types.RouteTableAssociationStateCodeAssociated {
				continue
			}
			if subnetID := derefString(assoc.SubnetId); subnetID != "" {
				result[subnetID] = table
			}
		}
	}
	return result, nil
}

func vpcFilter(vpcID string) []ec2types.Filter {
	return []ec2types.Filter{
		{Name: aws.String("vpc-id"), Values: []string{vpcID}},
	}
}
