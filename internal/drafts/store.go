package drafts

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
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-describer/internal/aws"
)

var (
	// ErrDraftNotFound is returned by FinalizeDraft when no draft exists for the product.
	ErrDraftNotFound = errors.New("custom object not found")
	// ErrConcurrentModification is returned when the draft version moved between read and write.
	ErrConcurrentModification = errors.New("draft was modified concurrently")
)

// Update expressions, shared with the tests' DynamoDB mock.
const (
	// createExpr overwrites the draft and bumps the version monotonically so a
	// reader holding an older version can never win after a re-create.
	createExpr = "SET #st = :state, image_url = :img, product_name = :name, created_at = :now, updated_at = :now, #v = if_not_exists(#v, :zero) + :one REMOVE temporary_description, generated_at"
	// finalizeExpr writes the description; guarded by versionCondition.
	finalizeExpr     = "SET #st = :state, temporary_description = :desc, image_url = :img, product_name = :name, generated_at = :ga, updated_at = :ga, #v = :next"
	versionCondition = "#v = :expected"
)

// Store owns the two-phase draft records.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new drafts Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (s *Store) key(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"container": &types.AttributeValueMemberS{Value: Container},
		"key":       &types.AttributeValueMemberS{Value: productID},
	}
}

var attrNames = map[string]string{"#st": "state", "#v": "version"}

// CreateDraft writes a pending draft for the product, replacing any existing one.
func (s *Store) CreateDraft(ctx context.Context, productID, imageURL, productName string) (*Record, error) {
	logger := zerolog.Ctx(ctx).With().Str("product_id", productID).Logger()
	now := s.nowFunc().UTC()

	input := &dyn.UpdateItemInput{
		TableName:                &s.tableName,
		Key:                      s.key(productID),
		UpdateExpression:         awsString(createExpr),
		ExpressionAttributeNames: attrNames,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberS{Value: StatePending},
			":img":   &types.AttributeValueMemberS{Value: imageURL},
			":name":  &types.AttributeValueMemberS{Value: productName},
			":now":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":zero":  &types.AttributeValueMemberN{Value: "0"},
			":one":   &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create draft")
		return nil, fmt.Errorf("create draft: %w", err)
	}

	rec, err := unmarshalRecord(out.Attributes)
	if err != nil {
		return nil, err
	}
	logger.Info().Int64("version", rec.Version).Msg("draft created")
	return rec, nil
}

// Get fetches a draft by product id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, productID string) (*Record, error) {
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
	return unmarshalRecord(out.Item)
}

// FinalizeDraft stores the generated description on the draft. The write is
// conditioned on the version read just before it; a concurrent writer makes
// it fail with ErrConcurrentModification instead of overwriting.
func (s *Store) FinalizeDraft(ctx context.Context, productID, productName, imageURL, description string) (*Record, error) {
	logger := zerolog.Ctx(ctx).With().Str("product_id", productID).Logger()

	current, err := s.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetch draft: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("%w for product ID: %s", ErrDraftNotFound, productID)
	}

	now := s.nowFunc().UTC()
	input := &dyn.UpdateItemInput{
		TableName:                &s.tableName,
		Key:                      s.key(productID),
		UpdateExpression:         awsString(finalizeExpr),
		ConditionExpression:      awsString(versionCondition),
		ExpressionAttributeNames: attrNames,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":state":    &types.AttributeValueMemberS{Value: StateFinalized},
			":desc":     &types.AttributeValueMemberS{Value: description},
			":img":      &types.AttributeValueMemberS{Value: imageURL},
			":name":     &types.AttributeValueMemberS{Value: productName},
			":ga":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":next":     &types.AttributeValueMemberN{Value: strconv.FormatInt(current.Version+1, 10)},
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(current.Version, 10)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			logger.Warn().Int64("read_version", current.Version).Msg("draft version changed since read")
			return nil, fmt.Errorf("%w: product %s, version %d", ErrConcurrentModification, productID, current.Version)
		}
		logger.Error().Err(err).Msg("failed to finalize draft")
		return nil, fmt.Errorf("update draft: %w", err)
	}

	rec, err := unmarshalRecord(out.Attributes)
	if err != nil {
		return nil, err
	}
	logger.Info().Int64("version", rec.Version).Msg("draft finalized")
	return rec, nil
}

func unmarshalRecord(item map[string]types.AttributeValue) (*Record, error) {
	var rec Record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &rec, nil
}

func isConditionalCheckFailed(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
