package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	ectypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"

	"github.com/eleven-am/conncheck/internal/domain"
)

// GetElastiCacheDestination describes an ElastiCache cluster as the
// destination of a connection attempt.
func (c *Client) GetElastiCacheDestination(ctx context.Context, clusterID string) (*domain.ResourceInfo, error) {
	out, err := c.elasticacheClient.DescribeCacheClusters(ctx, &elasticache.DescribeCacheClustersInput{
		CacheClusterId:    aws.String(clusterID),
		ShowCacheNodeInfo: aws.Bool(true),
	})
	if err != nil {
		var notFound *ectypes.CacheClusterNotFoundFault
		if errors.As(err, &notFound) {
			return nil, &domain.NotFoundError{Kind: "elasticache cluster", ID: clusterID}
		}
		return nil, fmt.Errorf("describe elasticache cluster %s: %w", clusterID, err)
	}
	if len(out.CacheClusters) == 0 {
		return nil, &domain.NotFoundError{Kind: "elasticache cluster", ID: clusterID}
	}

	cluster := out.CacheClusters[0]

	var groupIDs []string
	for _, sg := range cluster.SecurityGroups {
		if derefString(sg.Status) == "active" {
			groupIDs = append(groupIDs, derefString(sg.SecurityGroupId))
		}
	}

	port := 0
	for _, node := range cluster.CacheNodes {
		if node.Endpoint != nil && node.Endpoint.Port != nil {
			port = int(*node.Endpoint.Port)
			break
		}
	}
	if port == 0 && cluster.ConfigurationEndpoint != nil && cluster.ConfigurationEndpoint.Port != nil {
		port = int(*cluster.ConfigurationEndpoint.Port)
	}

	vpcID, subnetIDs, err := c.cacheSubnetGroup(ctx, derefString(cluster.CacheSubnetGroupName))
	if err != nil {
		return nil, err
	}
	cidr, err := c.subnetCIDR(ctx, vpcID, subnetIDs)
	if err != nil {
		return nil, err
	}

	return &domain.ResourceInfo{
		ResourceType:     "elasticache",
		Name:             clusterID,
		VPCID:            vpcID,
		SubnetIDs:        subnetIDs,
		SecurityGroupIDs: groupIDs,
		CIDR:             cidr,
		Port:             port,
	}, nil
}

func (c *Client) cacheSubnetGroup(ctx context.Context, groupName string) (string, []string, error) {
	if groupName == "" {
		return "", nil, fmt.Errorf("elasticache cluster has no subnet group")
	}
	out, err := c.elasticacheClient.DescribeCacheSubnetGroups(ctx, &elasticache.DescribeCacheSubnetGroupsInput{
		CacheSubnetGroupName: aws.String(groupName),
	})
	if err != nil {
		return "", nil, fmt.Errorf("describe cache subnet group %s: %w", groupName, err)
	}
	if len(out.CacheSubnetGroups) == 0 {
		return "", nil, &domain.NotFoundError{Kind: "cache subnet group", ID: groupName}
	}

	group := out.CacheSubnetGroups[0]
	var subnetIDs []string
	for _, subnet := range group.Subnets {
		subnetIDs = append(subnetIDs, derefString(subnet.SubnetIdentifier))
	}
	return derefString(group.VpcId), subnetIDs, nil
}
