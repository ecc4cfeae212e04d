package aws

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients holds the service clients of one process, all built from the
// same loaded config so region and endpoint override agree.
type AWSClients struct {
	Config     sdkaws.Config
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewAWSClients builds the DynamoDB (drafts, products, commits), SQS
// (description-ready) and CloudWatch (pipeline metrics) clients from cfg.
func NewAWSClients(cfg sdkaws.Config) *AWSClients {
	return &AWSClients{
		Config:     cfg,
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		SQS:        sqs.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}
}

// LoadAWSClients loads the shared config and builds the clients from it.
func LoadAWSClients(ctx context.Context) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewAWSClients(cfg), nil
}
