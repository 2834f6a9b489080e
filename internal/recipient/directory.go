// Package recipient reads the report mailing list from DynamoDB.
package recipient

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/recipient")

// DynamoDBAPI defines required DynamoDB operations.
type DynamoDBAPI interface {
	Scan(
		ctx context.Context,
		params *dynamodb.ScanInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type item struct {
	Email string `dynamodbav:"email"`
}

// Directory lists recipients stored one per item under the "email" attribute.
type Directory struct {
	client DynamoDBAPI
	table  string
}

// NewDirectory creates a directory backed by table.
func NewDirectory(client DynamoDBAPI, table string) *Directory {
	return &Directory{client: client, table: table}
}

// List scans the whole table and returns the addresses in the order read.
// Blank addresses and repeats are dropped.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "recipient.list")
	defer span.End()
	span.SetAttributes(attribute.String("dynamodb.table", d.table))

	var (
		recipients []string
		seen       = make(map[string]struct{})
	)

	p := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName:            aws.String(d.table),
		ProjectionExpression: aws.String("email"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot scan table %s: %w", d.table, err)
		}

		var items []item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("cannot unmarshal recipients: %w", err)
		}

		for _, it := range items {
			addr := strings.TrimSpace(it.Email)
			if addr == "" {
				continue
			}
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			recipients = append(recipients, addr)
		}
	}

	span.SetAttributes(attribute.Int("recipient.count", len(recipients)))
	return recipients, nil
}
