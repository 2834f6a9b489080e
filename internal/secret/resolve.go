// Package secret resolves configuration values stored in AWS Secrets Manager.
package secret

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ARNPrefix marks a configuration value as a Secrets Manager reference.
const ARNPrefix = "arn:aws:secretsmanager:"

// SecretsManagerAPI defines required Secrets Manager operations.
type SecretsManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// IsReference reports whether value names a secret instead of holding a literal.
func IsReference(value string) bool {
	return strings.HasPrefix(value, ARNPrefix)
}

// Resolve returns value unchanged unless it is a secret ARN, in which case
// the secret string is fetched and returned trimmed.
func Resolve(ctx context.Context, client SecretsManagerAPI, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(value),
	})
	if err != nil {
		return "", fmt.Errorf("cannot get secret value: %w", err)
	}

	resolved := strings.TrimSpace(aws.ToString(out.SecretString))
	if resolved == "" {
		return "", fmt.Errorf("secret %s has no string value", value)
	}

	return resolved, nil
}
