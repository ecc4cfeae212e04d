package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-product-describer/internal/aws"
)

var (
	// ErrProductNotFound is returned by Update when the product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrVersionMismatch is returned when the product version is not the expected one.
	ErrVersionMismatch = errors.New("product version mismatch/conditional failed")
)

const (
	updateExpr       = "SET #d = :desc, #n = :name, updated_at = :ua, #v = :next"
	versionCondition = "#v = :expected"
)

// Store encapsulates operations on the products table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new products Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (s *Store) key(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: productID},
	}
}

// Get fetches a product by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, productID string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(productID),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// Update applies actions to the product, conditioned on expectedVersion.
// Returns ErrVersionMismatch if the stored version differs, before or at write time.
func (s *Store) Update(ctx context.Context, productID string, expectedVersion int64, actions ...Action) (*Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if p.Version != expectedVersion {
		return nil, fmt.Errorf("%w: have %d, expected %d", ErrVersionMismatch, p.Version, expectedVersion)
	}

	for _, a := range actions {
		a.Apply(p)
	}

	desc, err := attributevalue.Marshal(nonNil(p.Description))
	if err != nil {
		return nil, fmt.Errorf("marshal description: %w", err)
	}
	name, err := attributevalue.Marshal(nonNil(p.Name))
	if err != nil {
		return nil, fmt.Errorf("marshal name: %w", err)
	}

	now := s.nowFunc().UTC()
	input := &dyn.UpdateItemInput{
		TableName:           &s.tableName,
		Key:                 s.key(productID),
		UpdateExpression:    awsString(updateExpr),
		ConditionExpression: awsString(versionCondition),
		ExpressionAttributeNames: map[string]string{
			"#d": "description",
			"#n": "name",
			"#v": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":desc":     desc,
			":name":     name,
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":next":     &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion+1, 10)},
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return nil, fmt.Errorf("%w: expected %d", ErrVersionMismatch, expectedVersion)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	var updated Product
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &updated, nil
}

// nonNil keeps DynamoDB from storing a NULL where a map is expected.
func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
