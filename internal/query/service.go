// Package query lists active reservations from the AWS services covered by
// the report.
package query

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/elasticsearchservice"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ri-expiration-report/internal/reservation"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/query")

// EC2API defines required EC2 operations.
type EC2API interface {
	DescribeReservedInstances(
		ctx context.Context,
		params *ec2.DescribeReservedInstancesInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeReservedInstancesOutput, error)
}

// RDSAPI defines required RDS operations.
type RDSAPI interface {
	DescribeReservedDBInstances(
		ctx context.Context,
		params *rds.DescribeReservedDBInstancesInput,
		optFns ...func(*rds.Options)) (*rds.DescribeReservedDBInstancesOutput, error)
}

// RedshiftAPI defines required Redshift operations.
type RedshiftAPI interface {
	DescribeReservedNodes(
		ctx context.Context,
		params *redshift.DescribeReservedNodesInput,
		optFns ...func(*redshift.Options)) (*redshift.DescribeReservedNodesOutput, error)
}

// ElastiCacheAPI defines required ElastiCache operations.
type ElastiCacheAPI interface {
	DescribeReservedCacheNodes(
		ctx context.Context,
		params *elasticache.DescribeReservedCacheNodesInput,
		optFns ...func(*elasticache.Options)) (*elasticache.DescribeReservedCacheNodesOutput, error)
}

// ElasticsearchAPI defines required Elasticsearch Service operations.
type ElasticsearchAPI interface {
	DescribeReservedElasticsearchInstances(
		ctx context.Context,
		params *elasticsearchservice.DescribeReservedElasticsearchInstancesInput,
		optFns ...func(*elasticsearchservice.Options)) (*elasticsearchservice.DescribeReservedElasticsearchInstancesOutput, error)
}

// Clients groups the service clients used by Service.
type Clients struct {
	EC2           EC2API
	RDS           RDSAPI
	Redshift      RedshiftAPI
	ElastiCache   ElastiCacheAPI
	Elasticsearch ElasticsearchAPI
}

// NewClients creates the service clients from one AWS config.
func NewClients(cfg aws.Config) Clients {
	return Clients{
		EC2:           ec2.NewFromConfig(cfg),
		RDS:           rds.NewFromConfig(cfg),
		Redshift:      redshift.NewFromConfig(cfg),
		ElastiCache:   elasticache.NewFromConfig(cfg),
		Elasticsearch: elasticsearchservice.NewFromConfig(cfg),
	}
}

// Service lists reservations as raw records.
type Service struct {
	clients Clients
}

// NewService creates a new query service.
func NewService(clients Clients) *Service {
	return &Service{clients: clients}
}

// ListActive returns the reservations of kind as raw records. EC2 is filtered
// to active reservations server side; other services return every state.
func (s *Service) ListActive(ctx context.Context, kind reservation.Kind) ([]reservation.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "query.list_active")
	defer span.End()
	span.SetAttributes(attribute.String("reservation.kind", string(kind)))

	var (
		records []reservation.RawRecord
		err     error
	)

	switch kind {
	case reservation.KindEC2:
		records, err = s.listEC2(ctx)
	case reservation.KindRDS:
		records, err = s.listRDS(ctx)
	case reservation.KindRedshift:
		records, err = s.listRedshift(ctx)
	case reservation.KindElastiCache:
		records, err = s.listElastiCache(ctx)
	case reservation.KindElasticsearch:
		records, err = s.listElasticsearch(ctx)
	default:
		return nil, fmt.Errorf("unknown reservation kind %q", kind)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("reservation.count", len(records)))
	return records, nil
}

func (s *Service) listEC2(ctx context.Context) ([]reservation.RawRecord, error) {
	out, err := s.clients.EC2.DescribeReservedInstances(ctx, &ec2.DescribeReservedInstancesInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("state"),
			Values: []string{reservation.StateActive},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot describe reserved instances: %w", err)
	}

	return reservation.NewRawRecords(out.ReservedInstances)
}

func (s *Service) listRDS(ctx context.Context) ([]reservation.RawRecord, error) {
	var records []reservation.RawRecord

	p := rds.NewDescribeReservedDBInstancesPaginator(s.clients.RDS, &rds.DescribeReservedDBInstancesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot describe reserved db instances: %w", err)
		}

		batch, err := reservation.NewRawRecords(page.ReservedDBInstances)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}

	return records, nil
}

func (s *Service) listRedshift(ctx context.Context) ([]reservation.RawRecord, error) {
	var records []reservation.RawRecord

	p := redshift.NewDescribeReservedNodesPaginator(s.clients.Redshift, &redshift.DescribeReservedNodesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot describe reserved nodes: %w", err)
		}

		batch, err := reservation.NewRawRecords(page.ReservedNodes)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}

	return records, nil
}

func (s *Service) listElastiCache(ctx context.Context) ([]reservation.RawRecord, error) {
	var records []reservation.RawRecord

	p := elasticache.NewDescribeReservedCacheNodesPaginator(s.clients.ElastiCache, &elasticache.DescribeReservedCacheNodesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot describe reserved cache nodes: %w", err)
		}

		batch, err := reservation.NewRawRecords(page.ReservedCacheNodes)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}

	return records, nil
}

func (s *Service) listElasticsearch(ctx context.Context) ([]reservation.RawRecord, error) {
	var (
		records []reservation.RawRecord
		token   *string
	)

	for {
		out, err := s.clients.Elasticsearch.DescribeReservedElasticsearchInstances(ctx,
			&elasticsearchservice.DescribeReservedElasticsearchInstancesInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("cannot describe reserved elasticsearch instances: %w", err)
		}

		batch, err := reservation.NewRawRecords(out.ReservedElasticsearchInstances)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)

		next := aws.ToString(out.NextToken)
		if next == "" || next == aws.ToString(token) {
			return records, nil
		}
		token = out.NextToken
	}
}
