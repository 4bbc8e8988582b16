package aws

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// Client bundles the service clients the connectivity check needs. All
// lookups go through one Client so that repeated descriptions of the same
// VPC or security group within a run hit the cache instead of the API.
type Client struct {
	ec2Client         *ec2.Client
	ecsClient         *ecs.Client
	lambdaClient      *lambda.Client
	rdsClient         *rds.Client
	elasticacheClient *elasticache.Client
	region            string
	cache             *ttlCache
}

func newRetryer() aws.Retryer {
	return retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = 5
		o.MaxBackoff = 30 * time.Second
		o.Backoff = retry.NewExponentialJitterBackoff(o.MaxBackoff)
		o.RateLimiter = ratelimit.None
	})
}

func NewClient(cfg aws.Config) *Client {
	retryer := newRetryer()
	return &Client{
		ec2Client:         ec2.NewFromConfig(cfg, func(o *ec2.Options) { o.Retryer = retryer }),
		ecsClient:         ecs.NewFromConfig(cfg, func(o *ecs.Options) { o.Retryer = retryer }),
		lambdaClient:      lambda.NewFromConfig(cfg, func(o *lambda.Options) { o.Retryer = retryer }),
		rdsClient:         rds.NewFromConfig(cfg, func(o *rds.Options) { o.Retryer = retryer }),
		elasticacheClient: elasticache.NewFromConfig(cfg, func(o *elasticache.Options) { o.Retryer = retryer }),
		region:            cfg.Region,
		cache:             newTTLCache(5*time.Minute, 500),
	}
}

func (c *Client) cacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}
