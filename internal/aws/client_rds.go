package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/eleven-am/conncheck/internal/domain"
)

// GetRDSInstance describes an RDS database instance as the destination of a
// connection attempt. A missing instance is reported as a NotFoundError so
// the caller can fall back to treating the name as a cluster; any other
// failure propagates as-is.
func (c *Client) GetRDSInstance(ctx context.Context, instanceID string) (*domain.ResourceInfo, error) {
	out, err := c.rdsClient.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(instanceID),
	})
	if err != nil {
		var notFound *rdstypes.DBInstanceNotFoundFault
		if errors.As(err, &notFound) {
			return nil, &domain.NotFoundError{Kind: "rds instance", ID: instanceID}
		}
		return nil, fmt.Errorf("describe rds instance %s: %w", instanceID, err)
	}
	if len(out.DBInstances) == 0 {
		return nil, &domain.NotFoundError{Kind: "rds instance", ID: instanceID}
	}

	db := out.DBInstances[0]
	if db.DBSubnetGroup == nil {
		return nil, fmt.Errorf("rds instance %s has no subnet group", instanceID)
	}
	vpcID := derefString(db.DBSubnetGroup.VpcId)

	var subnetIDs []string
	for _, subnet := range db.DBSubnetGroup.Subnets {
		if derefString(subnet.SubnetStatus) == "Active" {
			subnetIDs = append(subnetIDs, derefString(subnet.SubnetIdentifier))
		}
	}

	var groupIDs []string
	for _, sg := range db.VpcSecurityGroups {
		if derefString(sg.Status) == "active" {
			groupIDs = append(groupIDs, derefString(sg.VpcSecurityGroupId))
		}
	}

	port := 0
	if db.Endpoint != nil && db.Endpoint.Port != nil {
		port = int(*db.Endpoint.Port)
	}

	cidr, err := c.subnetCIDR(ctx, vpcID, subnetIDs)
	if err != nil {
		return nil, err
	}

	return &domain.ResourceInfo{
		ResourceType:     "RDS",
		Name:             instanceID,
		VPCID:            vpcID,
		SubnetIDs:        subnetIDs,
		SecurityGroupIDs: groupIDs,
		CIDR:             cidr,
		Port:             port,
	}, nil
}

// GetRDSClusterWriter returns the identifier of the writer instance of the
// given cluster. A missing cluster is a NotFoundError; a cluster without a
// writer is an outright error, since the check has nothing to connect to.
func (c *Client) GetRDSClusterWriter(ctx context.Context, clusterID string) (string, error) {
	out, err := c.rdsClient.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(clusterID),
	})
	if err != nil {
		var notFound *rdstypes.DBClusterNotFoundFault
		if errors.As(err, &notFound) {
			return "", &domain.NotFoundError{Kind: "rds cluster", ID: clusterID}
		}
		return "", fmt.Errorf("describe rds cluster %s: %w", clusterID, err)
	}
	if len(out.DBClusters) == 0 {
		return "", &domain.NotFoundError{Kind: "rds cluster", ID: clusterID}
	}

	for _, member := range out.DBClusters[0].DBClusterMembers {
		if derefBool(member.IsClusterWriter) {
			return derefString(member.DBInstanceIdentifier), nil
		}
	}
	return "", fmt.Errorf("rds cluster %s has no writer instance", clusterID)
}
