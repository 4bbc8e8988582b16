package check

import (
	"context"
	"fmt"

	"github.com/eleven-am/conncheck/internal/domain"
	"github.com/eleven-am/conncheck/internal/rules"
)

type mockAWSClient struct {
	lambdas             map[string]*domain.ResourceInfo
	ecsServices         map[string]*domain.ResourceInfo
	rdsInstances        map[string]*domain.ResourceInfo
	clusterWriters      map[string]string
	elasticacheClusters map[string]*domain.ResourceInfo
	ruleSets            map[string]*rules.RuleSet

	clusterWriterErr error
	ruleLookups      [][]string
}

func newMockAWSClient() *mockAWSClient {
	return &mockAWSClient{
		lambdas:             make(map[string]*domain.ResourceInfo),
		ecsServices:         make(map[string]*domain.ResourceInfo),
		rdsInstances:        make(map[string]*domain.ResourceInfo),
		clusterWriters:      make(map[string]string),
		elasticacheClusters: make(map[string]*domain.ResourceInfo),
		ruleSets:            make(map[string]*rules.RuleSet),
	}
}

func (m *mockAWSClient) GetLambdaSource(ctx context.Context, functionName string) (*domain.ResourceInfo, error) {
	if info, ok := m.lambdas[functionName]; ok {
		return info, nil
	}
	return nil, &domain.NotFoundError{Kind: "lambda function", ID: functionName}
}

func (m *mockAWSClient) GetECSSource(ctx context.Context, serviceSpec string) (*domain.ResourceInfo, error) {
	if info, ok := m.ecsServices[serviceSpec]; ok {
		return info, nil
	}
	return nil, &domain.NotFoundError{Kind: "ecs service", ID: serviceSpec}
}

func (m *mockAWSClient) GetRDSInstance(ctx context.Context, instanceID string) (*domain.ResourceInfo, error) {
	if info, ok := m.rdsInstances[instanceID]; ok {
		return info, nil
	}
	return nil, &domain.NotFoundError{Kind: "rds instance", ID: instanceID}
}

func (m *mockAWSClient) GetRDSClusterWriter(ctx context.Context, clusterID string) (string, error) {
	if m.clusterWriterErr != nil {
		return "", m.clusterWriterErr
	}
	if writer, ok := m.clusterWriters[clusterID]; ok {
		return writer, nil
	}
	return "", &domain.NotFoundError{Kind: "rds cluster", ID: clusterID}
}

func (m *mockAWSClient) GetElastiCacheDestination(ctx context.Context, clusterID string) (*domain.ResourceInfo, error) {
	if info, ok := m.elasticacheClusters[clusterID]; ok {
		return info, nil
	}
	return nil, &domain.NotFoundError{Kind: "elasticache cluster", ID: clusterID}
}

func (m *mockAWSClient) GetSecurityGroupRules(ctx context.Context, groupIDs []string) (*rules.RuleSet, error) {
	m.ruleLookups = append(m.ruleLookups, groupIDs)
	if len(groupIDs) == 0 {
		return rules.NewRuleSet(), nil
	}
	if set, ok := m.ruleSets[groupIDs[0]]; ok {
		return set, nil
	}
	return nil, fmt.Errorf("security group %s not found", groupIDs[0])
}
