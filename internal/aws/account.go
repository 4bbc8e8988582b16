package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AssumeRole exchanges the base credentials for temporary credentials in the
// given role and returns a config carrying them. Used when the resources
// under inspection live in an account the operator reaches through a role.
func AssumeRole(ctx context.Context, cfg aws.Config, roleARN string) (aws.Config, error) {
	stsClient := sts.NewFromConfig(cfg)
	out, err := stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String("conncheck"),
		DurationSeconds: aws.Int32(3600),
	})
	if err != nil {
		return aws.Config{}, fmt.Errorf("assume role %s: %w", roleARN, err)
	}

	assumed := cfg.Copy()
	assumed.Credentials = credentials.NewStaticCredentialsProvider(
		derefString(out.Credentials.AccessKeyId),
		derefString(out.Credentials.SecretAccessKey),
		derefString(out.Credentials.SessionToken),
	)
	return assumed, nil
}
