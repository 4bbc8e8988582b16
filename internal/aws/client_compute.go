package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/eleven-am/conncheck/internal/domain"
)

// GetLambdaSource describes a Lambda function as the originating side of a
// connection attempt. Accepts a function name or ARN. Functions that do not
// run inside a VPC have no security groups to evaluate and are rejected.
func (c *Client) GetLambdaSource(ctx context.Context, functionName string) (*domain.ResourceInfo, error) {
	out, err := c.lambdaClient.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		var notFound *lambdatypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, &domain.NotFoundError{Kind: "lambda function", ID: functionName}
		}
		return nil, fmt.Errorf("get lambda function %s: %w", functionName, err)
	}

	config := out.Configuration
	vpcConfig := config.VpcConfig
	if vpcConfig == nil || derefString(vpcConfig.VpcId) == "" {
		return nil, fmt.Errorf("lambda function %s does not run in a VPC", functionName)
	}

	vpcID := derefString(vpcConfig.VpcId)
	cidr, err := c.subnetCIDR(ctx, vpcID, vpcConfig.SubnetIds)
	if err != nil {
		return nil, err
	}

	return &domain.ResourceInfo{
		ResourceType:     "lambda",
		Name:             derefString(config.FunctionName),
		VPCID:            vpcID,
		SubnetIDs:        vpcConfig.SubnetIds,
		SecurityGroupIDs: vpcConfig.SecurityGroupIds,
		CIDR:             cidr,
	}, nil
}

// GetECSSource describes a Fargate ECS service as the originating side of a
// connection attempt. The service may be named alone, for the default
// cluster, or as "cluster:service".
func (c *Client) GetECSSource(ctx context.Context, serviceSpec string) (*domain.ResourceInfo, error) {
	input := &ecs.DescribeServicesInput{}
	if cluster, service, found := strings.Cut(serviceSpec, ":"); found {
		input.Cluster = aws.String(cluster)
		input.Services = []string{service}
	} else {
		input.Services = []string{serviceSpec}
	}

	out, err := c.ecsClient.DescribeServices(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("describe ecs service %s: %w", serviceSpec, err)
	}
	if len(out.Services) == 0 {
		return nil, &domain.NotFoundError{Kind: "ecs service", ID: serviceSpec}
	}

	service := out.Services[0]
	if service.NetworkConfiguration == nil || service.NetworkConfiguration.AwsvpcConfiguration == nil {
		return nil, fmt.Errorf("ecs service %s has no awsvpc network configuration", serviceSpec)
	}
	netConfig := service.NetworkConfiguration.AwsvpcConfiguration
	if len(netConfig.Subnets) == 0 {
		return nil, fmt.Errorf("ecs service %s has no subnets", serviceSpec)
	}

	vpc, err := c.GetVPCBySubnet(ctx, netConfig.Subnets[0])
	if err != nil {
		return nil, err
	}
	cidr, err := c.subnetCIDR(ctx, vpc.ID, netConfig.Subnets)
	if err != nil {
		return nil, err
	}

	return &domain.ResourceInfo{
		ResourceType:     "ECS",
		Name:             derefString(service.ServiceName),
		VPCID:            vpc.ID,
		SubnetIDs:        netConfig.Subnets,
		SecurityGroupIDs: netConfig.SecurityGroups,
		CIDR:             cidr,
	}, nil
}

// subnetCIDR returns the address block of the resource's first subnet, the
// block the evaluator treats as the resource's address.
func (c *Client) subnetCIDR(ctx context.Context, vpcID string, subnetIDs []string) (domain.AddressBlock, error) {
	if len(subnetIDs) == 0 {
		return domain.AddressBlock{}, fmt.Errorf("vpc %s: resource has no subnets", vpcID)
	}
	vpc, err := c.GetVPC(ctx, vpcID)
	if err != nil {
		return domain.AddressBlock{}, err
	}
	subnet, ok := vpc.Subnets[subnetIDs[0]]
	if !ok {
		return domain.AddressBlock{}, &domain.NotFoundError{Kind: "subnet", ID: subnetIDs[0]}
	}
	return subnet.CIDR, nil
}
