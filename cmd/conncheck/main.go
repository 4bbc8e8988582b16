// Command conncheck determines whether one AWS resource can connect to
// another by statically evaluating VPC placement and security group rules.
// No traffic is sent.
//
// Exit codes: 0 when a path exists, 2 when a resource lookup fails, 3 when
// connectivity is blocked or could not be established.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	awsx "github.com/eleven-am/conncheck/internal/aws"
	"github.com/eleven-am/conncheck/internal/check"
)

const (
	exitOK            = 0
	exitLookupFailure = 2
	exitNotReachable  = 3
)

var (
	fromLambda    string
	fromECS       string
	toRDS         string
	toElastiCache string
	port          int
	region        string
	roleARN       string
	verbose       bool
)

const longHelp = `conncheck statically evaluates the security groups and VPC placement of a
source resource (a Lambda function or ECS service) and a destination data
store (an RDS instance/cluster or ElastiCache cluster) and reports whether
the source can open a connection to the destination. Nothing is sent over
the network.`

var rootCmd = &cobra.Command{
	Use:           "conncheck",
	Short:         "Determines whether one AWS resource can connect to another",
	Long:          longHelp,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&fromLambda, "from-lambda", "", "source Lambda function, by name or ARN")
	flags.StringVar(&fromECS, "from-ecs", "", "source ECS service, as NAME or CLUSTER:NAME")
	flags.StringVar(&toRDS, "to-rds", "", "destination RDS instance or cluster (clusters use the writer instance)")
	flags.StringVar(&toElastiCache, "to-elasticache", "", "destination ElastiCache cluster")
	flags.IntVar(&port, "port", 5432, "destination port")
	flags.StringVar(&region, "region", "", "AWS region (defaults to the environment's region)")
	flags.StringVar(&roleARN, "role-arn", "", "IAM role to assume before looking up resources")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLookupFailure)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if (fromLambda == "") == (fromECS == "") {
		return fmt.Errorf("specify exactly one of --from-lambda or --from-ecs")
	}
	if (toRDS == "") == (toElastiCache == "") {
		return fmt.Errorf("specify exactly one of --to-rds or --to-elasticache")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	ctx := cmd.Context()
	loadOpts := []func(*config.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLookupFailure)
	}
	if roleARN != "" {
		cfg, err = awsx.AssumeRole(ctx, cfg, roleARN)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitLookupFailure)
		}
	}

	checker := check.New(awsx.NewClient(cfg), logger)

	fmt.Println("loading service information")
	source, dest, err := checker.Resolve(ctx, check.Request{
		SourceLambda:    fromLambda,
		SourceECS:       fromECS,
		DestRDS:         toRDS,
		DestElastiCache: toElastiCache,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLookupFailure)
	}

	fmt.Println("checking VPC connectivity")
	if source.VPCID != dest.VPCID {
		fmt.Println("* not in same VPC")
		os.Exit(exitNotReachable)
	}
	fmt.Println("* in same VPC")

	// The operator's --port wins; otherwise fall back to the destination's
	// own listener port when the lookup surfaced one.
	destPort := port
	if !cmd.Flags().Changed("port") && dest.Port > 0 {
		destPort = dest.Port
	}

	fmt.Println("checking security groups")
	report, err := checker.Evaluate(ctx, source, dest, destPort)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLookupFailure)
	}
	for _, line := range report.ResultLines() {
		fmt.Printf("* %s\n", line)
	}
	if !report.Reachable() {
		os.Exit(exitNotReachable)
	}
	return nil
}
