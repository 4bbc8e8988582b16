package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/eleven-am/conncheck/internal/domain"
	"github.com/eleven-am/conncheck/internal/rules"
)

func testChecker(client AWSClient) *Checker {
	return New(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func lambdaInfo() *domain.ResourceInfo {
	return &domain.ResourceInfo{
		ResourceType:     "lambda",
		Name:             "order-processor",
		VPCID:            "vpc-1",
		SubnetIDs:        []string{"subnet-1"},
		SecurityGroupIDs: []string{"sg-12345"},
		CIDR:             domain.MustParseAddressBlock("172.31.0.10/32"),
	}
}

func rdsInfo(vpcID string) *domain.ResourceInfo {
	return &domain.ResourceInfo{
		ResourceType:     "RDS",
		Name:             "orders-db",
		VPCID:            vpcID,
		SubnetIDs:        []string{"subnet-2"},
		SecurityGroupIDs: []string{"sg-67890"},
		CIDR:             domain.MustParseAddressBlock("172.31.128.10/32"),
		Port:             5432,
	}
}

func TestResolve_LambdaAndRDS(t *testing.T) {
	client := newMockAWSClient()
	client.lambdas["order-processor"] = lambdaInfo()
	client.rdsInstances["orders-db"] = rdsInfo("vpc-1")

	source, dest, err := testChecker(client).Resolve(context.Background(), Request{
		SourceLambda: "order-processor",
		DestRDS:      "orders-db",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.Name != "order-processor" {
		t.Errorf("unexpected source: %+v", source)
	}
	if dest.Name != "orders-db" || dest.Port != 5432 {
		t.Errorf("unexpected dest: %+v", dest)
	}
}

func TestResolve_ECSSource(t *testing.T) {
	client := newMockAWSClient()
	info := lambdaInfo()
	info.ResourceType = "ECS"
	info.Name = "web"
	client.ecsServices["prod:web"] = info
	client.rdsInstances["orders-db"] = rdsInfo("vpc-1")

	source, _, err := testChecker(client).Resolve(context.Background(), Request{
		SourceECS: "prod:web",
		DestRDS:   "orders-db",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.ResourceType != "ECS" {
		t.Errorf("expected ECS source, got %+v", source)
	}
}

func TestResolve_MissingSourceSpec(t *testing.T) {
	client := newMockAWSClient()
	client.rdsInstances["orders-db"] = rdsInfo("vpc-1")

	_, _, err := testChecker(client).Resolve(context.Background(), Request{DestRDS: "orders-db"})
	if err == nil {
		t.Error("expected error, got nil")
	}
}

func TestResolve_LookupErrorPropagates(t *testing.T) {
	client := newMockAWSClient()
	client.rdsInstances["orders-db"] = rdsInfo("vpc-1")

	_, _, err := testChecker(client).Resolve(context.Background(), Request{
		SourceLambda: "missing-fn",
		DestRDS:      "orders-db",
	})
	if !domain.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestResolveRDS_ClusterWriterFallback(t *testing.T) {
	client := newMockAWSClient()
	client.lambdas["order-processor"] = lambdaInfo()
	client.clusterWriters["orders-cluster"] = "orders-db-writer"
	client.rdsInstances["orders-db-writer"] = rdsInfo("vpc-1")

	_, dest, err := testChecker(client).Resolve(context.Background(), Request{
		SourceLambda: "order-processor",
		DestRDS:      "orders-cluster",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Name != "orders-db" {
		t.Errorf("expected writer instance info, got %+v", dest)
	}
}

func TestResolveRDS_NeitherInstanceNorCluster(t *testing.T) {
	client := newMockAWSClient()
	client.lambdas["order-processor"] = lambdaInfo()

	_, _, err := testChecker(client).Resolve(context.Background(), Request{
		SourceLambda: "order-processor",
		DestRDS:      "nonexistent",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !domain.IsNotFound(err) {
		t.Errorf("expected wrapped not-found error, got %v", err)
	}
}

func TestResolveRDS_ClusterLookupFailureNotMasked(t *testing.T) {
	client := newMockAWSClient()
	client.lambdas["order-processor"] = lambdaInfo()
	client.clusterWriterErr = errors.New("access denied")

	_, _, err := testChecker(client).Resolve(context.Background(), Request{
		SourceLambda: "order-processor",
		DestRDS:      "orders-cluster",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if domain.IsNotFound(err) {
		t.Errorf("expected the underlying failure, got not-found: %v", err)
	}
}

func TestEvaluate_DifferentVPCSkipsRules(t *testing.T) {
	client := newMockAWSClient()

	report, err := testChecker(client).Evaluate(context.Background(), lambdaInfo(), rdsInfo("vpc-2"), 5432)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SameVPC {
		t.Error("expected SameVPC false")
	}
	if report.Reachable() {
		t.Error("expected not reachable")
	}
	if len(client.ruleLookups) != 0 {
		t.Errorf("expected no rule lookups, got %d", len(client.ruleLookups))
	}
}

func TestEvaluate_SameVPCSuccess(t *testing.T) {
	client := newMockAWSClient()
	client.ruleSets["sg-12345"] = rules.NewRuleSet().
		AddEgressRule("sg-12345", "sgr-12345-01", "tcp",
			domain.NewPortRange(0, 65535), domain.MustParseAddressBlock("0.0.0.0/0"))
	client.ruleSets["sg-67890"] = rules.NewRuleSet().
		AddIngressRule("sg-67890", "sgr-67890-01", "tcp",
			domain.NewPortRange(5432, 5432), "", domain.MustParseAddressBlock("172.31.0.0/16"))

	report, err := testChecker(client).Evaluate(context.Background(), lambdaInfo(), rdsInfo("vpc-1"), 5432)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Reachable() {
		t.Fatalf("expected reachable, got %+v", report.Evaluation)
	}
	want := "sg-67890 has cidr-based rule sgr-67890-01 that allows 172.31.0.10/32 on port 5432"
	if report.Evaluation.Success != want {
		t.Errorf("unexpected success message: %q", report.Evaluation.Success)
	}
	if len(client.ruleLookups) != 2 {
		t.Errorf("expected 2 rule lookups, got %d", len(client.ruleLookups))
	}
}

func TestEvaluate_InconclusiveIsNotReachable(t *testing.T) {
	client := newMockAWSClient()
	client.ruleSets["sg-12345"] = rules.NewRuleSet().
		AddEgressRule("sg-12345", "sgr-12345-01", "tcp",
			domain.NewPortRange(0, 65535), domain.MustParseAddressBlock("0.0.0.0/0"))

	dest := rdsInfo("vpc-1")
	dest.SecurityGroupIDs = nil

	report, err := testChecker(client).Evaluate(context.Background(), lambdaInfo(), dest, 5432)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Reachable() {
		t.Error("expected not reachable with no ingress rules")
	}
	if report.Evaluation.Failure != "" {
		t.Errorf("expected no failure message, got %q", report.Evaluation.Failure)
	}
	if len(report.ResultLines()) != 0 {
		t.Errorf("expected no result lines, got %v", report.ResultLines())
	}
}

func TestReport_ResultLines(t *testing.T) {
	ev := rules.NewEvaluation()
	ev.AddContext("b hint")
	ev.AddContext("a hint")
	report := &Report{SameVPC: true, Evaluation: ev}

	lines := report.ResultLines()
	if len(lines) != 2 || lines[0] != "a hint" || lines[1] != "b hint" {
		t.Errorf("unexpected lines: %v", lines)
	}

	ev.MarkFailure("blocked")
	if lines := report.ResultLines(); len(lines) != 1 || lines[0] != "blocked" {
		t.Errorf("expected failure line, got %v", lines)
	}

	ev.MarkSuccess("allowed")
	if lines := report.ResultLines(); len(lines) != 1 || lines[0] != "allowed" {
		t.Errorf("expected success line, got %v", lines)
	}
}
