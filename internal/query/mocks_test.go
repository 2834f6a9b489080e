package query

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/elasticsearchservice"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/stretchr/testify/mock"
)

// EC2APIMock is a mock implementation of the EC2API interface.
type EC2APIMock struct {
	mock.Mock
}

func (m *EC2APIMock) DescribeReservedInstances(ctx context.Context, params *ec2.DescribeReservedInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeReservedInstancesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeReservedInstancesOutput), args.Error(1)
}

// RDSAPIMock is a mock implementation of the RDSAPI interface.
type RDSAPIMock struct {
	mock.Mock
}

func (m *RDSAPIMock) DescribeReservedDBInstances(ctx context.Context, params *rds.DescribeReservedDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeReservedDBInstancesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rds.DescribeReservedDBInstancesOutput), args.Error(1)
}

// RedshiftAPIMock is a mock implementation of the RedshiftAPI interface.
type RedshiftAPIMock struct {
	mock.Mock
}

func (m *RedshiftAPIMock) DescribeReservedNodes(ctx context.Context, params *redshift.DescribeReservedNodesInput, optFns ...func(*redshift.Options)) (*redshift.DescribeReservedNodesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redshift.DescribeReservedNodesOutput), args.Error(1)
}

// ElastiCacheAPIMock is a mock implementation of the ElastiCacheAPI interface.
type ElastiCacheAPIMock struct {
	mock.Mock
}

func (m *ElastiCacheAPIMock) DescribeReservedCacheNodes(ctx context.Context, params *elasticache.DescribeReservedCacheNodesInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeReservedCacheNodesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticache.DescribeReservedCacheNodesOutput), args.Error(1)
}

// ElasticsearchAPIMock is a mock implementation of the ElasticsearchAPI interface.
type ElasticsearchAPIMock struct {
	mock.Mock
}

func (m *ElasticsearchAPIMock) DescribeReservedElasticsearchInstances(ctx context.Context, params *elasticsearchservice.DescribeReservedElasticsearchInstancesInput, optFns ...func(*elasticsearchservice.Options)) (*elasticsearchservice.DescribeReservedElasticsearchInstancesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticsearchservice.DescribeReservedElasticsearchInstancesOutput), args.Error(1)
}
