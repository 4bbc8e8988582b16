// Package check orchestrates one connectivity check: it resolves the two
// endpoints, gates on VPC equality, fetches each side's security group rules
// and runs the reachability evaluation.
package check

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/conncheck/internal/domain"
	"github.com/eleven-am/conncheck/internal/rules"
)

// AWSClient is the slice of the provider client the checker needs. Narrow on
// purpose so tests can substitute a fake.
type AWSClient interface {
	GetLambdaSource(ctx context.Context, functionName string) (*domain.ResourceInfo, error)
	GetECSSource(ctx context.Context, serviceSpec string) (*domain.ResourceInfo, error)
	GetRDSInstance(ctx context.Context, instanceID string) (*domain.ResourceInfo, error)
	GetRDSClusterWriter(ctx context.Context, clusterID string) (string, error)
	GetElastiCacheDestination(ctx context.Context, clusterID string) (*domain.ResourceInfo, error)
	GetSecurityGroupRules(ctx context.Context, groupIDs []string) (*rules.RuleSet, error)
}

// Request names the two endpoints of the check. Exactly one source and one
// destination field must be set.
type Request struct {
	SourceLambda    string
	SourceECS       string
	DestRDS         string
	DestElastiCache string
}

type Checker struct {
	client AWSClient
	log    *slog.Logger
}

func New(client AWSClient, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{client: client, log: logger}
}

// Resolve looks up both endpoints concurrently. Any lookup failure aborts
// the whole check; there is nothing to evaluate without both descriptors.
func (c *Checker) Resolve(ctx context.Context, req Request) (*domain.ResourceInfo, *domain.ResourceInfo, error) {
	var source, dest *domain.ResourceInfo

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = c.resolveSource(gctx, req)
		return err
	})
	g.Go(func() error {
		var err error
		dest, err = c.resolveDest(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	c.log.Debug("resolved endpoints",
		"source", source.Name, "sourceVPC", source.VPCID,
		"dest", dest.Name, "destVPC", dest.VPCID)
	return source, dest, nil
}

func (c *Checker) resolveSource(ctx context.Context, req Request) (*domain.ResourceInfo, error) {
	switch {
	case req.SourceLambda != "":
		return c.client.GetLambdaSource(ctx, req.SourceLambda)
	case req.SourceECS != "":
		return c.client.GetECSSource(ctx, req.SourceECS)
	default:
		return nil, fmt.Errorf("no source resource specified")
	}
}

func (c *Checker) resolveDest(ctx context.Context, req Request) (*domain.ResourceInfo, error) {
	switch {
	case req.DestRDS != "":
		return c.resolveRDS(ctx, req.DestRDS)
	case req.DestElastiCache != "":
		return c.client.GetElastiCacheDestination(ctx, req.DestElastiCache)
	default:
		return nil, fmt.Errorf("no destination resource specified")
	}
}

// resolveRDS treats the name as an instance first and falls back to the
// cluster's writer instance only when the instance lookup reports not-found.
// Other failures propagate untouched rather than masquerading as a missing
// instance.
func (c *Checker) resolveRDS(ctx context.Context, name string) (*domain.ResourceInfo, error) {
	info, err := c.client.GetRDSInstance(ctx, name)
	if err == nil {
		return info, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	writerID, err := c.client.GetRDSClusterWriter(ctx, name)
	if domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to find RDS instance/cluster with name %s: %w", name, err)
	}
	if err != nil {
		return nil, err
	}
	c.log.Debug("using cluster writer instance", "cluster", name, "writer", writerID)
	return c.client.GetRDSInstance(ctx, writerID)
}

// Evaluate runs the reachability evaluation between two resolved endpoints.
// Endpoints in different VPCs short-circuit as unreachable without touching
// the security groups; no peering or gateway traversal is modeled. The
// returned error covers rule fetching only, a negative evaluation is not an
// error.
func (c *Checker) Evaluate(ctx context.Context, source, dest *domain.ResourceInfo, port int) (*Report, error) {
	report := &Report{Source: source, Dest: dest, Port: port}
	if source.VPCID != dest.VPCID {
		c.log.Debug("endpoints in different VPCs", "sourceVPC", source.VPCID, "destVPC", dest.VPCID)
		return report, nil
	}
	report.SameVPC = true

	sourceRules, err := c.client.GetSecurityGroupRules(ctx, source.SecurityGroupIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch source security group rules: %w", err)
	}
	destRules, err := c.client.GetSecurityGroupRules(ctx, dest.SecurityGroupIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch destination security group rules: %w", err)
	}

	report.Evaluation = sourceRules.CanConnectTo(source.CIDR, dest.CIDR, uint16(port), destRules)
	return report, nil
}
