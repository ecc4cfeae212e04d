package idempotency

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

// ErrCommitInProgress is returned by Claim while another worker holds a live
// claim on the commit. The caller should retry after the lease runs out.
var ErrCommitInProgress = errors.New("commit in progress")

const (
	createCondition = "attribute_not_exists(commit_key)"
	// reclaimCondition lets a FAILED commit, or one whose claim lease ran out, be claimed again
	reclaimCondition = "#s = :failed OR (#s = :inprogress AND claimed_at < :cutoff)"
)

// Store encapsulates commit-record operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration // how long records are kept before DynamoDB TTL removes them
	lease     time.Duration // how long an IN_PROGRESS claim blocks other workers
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// ttlWindow: retention of commit records (e.g., 48*time.Hour)
// lease: claim lifetime, at least the queue visibility timeout
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow, lease time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		lease:     lease,
		nowFunc:   time.Now,
	}
}

// Claim creates an IN_PROGRESS record for the commit, or takes over a FAILED
// one or one whose lease has expired.
// Returns (true, nil) when the caller owns the commit, (false, nil) when it is
// already DONE, and ErrCommitInProgress while another claim is still live.
func (s *Store) Claim(ctx context.Context, productID string, draftVersion int64) (bool, error) {
	key := CommitKey(productID, draftVersion)
	created, err := s.createIfNotExists(ctx, key, productID, draftVersion)
	if err != nil || created {
		return created, err
	}

	now := s.nowFunc()
	_, err = s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"commit_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:         awsString("SET #s = :inprogress, claimed_at = :now, updated_at = :ua"),
		ConditionExpression:      awsString(reclaimCondition),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inprogress": &types.AttributeValueMemberS{Value: StatusInProgress},
			":failed":     &types.AttributeValueMemberS{Value: StatusFailed},
			":now":        &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
			":cutoff":     &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(-s.lease).Unix(), 10)},
			":ua":         &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err == nil {
		return true, nil
	}
	if !conditionFailed(err) {
		return false, fmt.Errorf("update item (claim): %w", err)
	}

	rec, err := s.Get(ctx, productID, draftVersion)
	if err != nil {
		return false, err
	}
	if rec != nil && rec.Status == StatusDone {
		return false, nil
	}
	// IN_PROGRESS within its lease, or removed between the two calls
	return false, fmt.Errorf("%w: %s", ErrCommitInProgress, key)
}

func (s *Store) createIfNotExists(ctx context.Context, key, productID string, draftVersion int64) (bool, error) {
	now := s.nowFunc()
	rec := CommitRecord{
		CommitKey:    key,
		Status:       StatusInProgress,
		ProductID:    productID,
		DraftVersion: draftVersion,
		ClaimedAt:    now.Unix(),
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString(createCondition),
	})
	if err != nil {
		if conditionFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}
	return true, nil
}

// Get retrieves a commit record. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, productID string, draftVersion int64) (*CommitRecord, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"commit_key": &types.AttributeValueMemberS{Value: CommitKey(productID, draftVersion)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec CommitRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// MarkDone sets status to DONE and stores the product version that was written.
func (s *Store) MarkDone(ctx context.Context, productID string, draftVersion, productVersion int64) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"commit_key": &types.AttributeValueMemberS{Value: CommitKey(productID, draftVersion)},
		},
		UpdateExpression:         awsString("SET #s = :done, product_version = :pv, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":pv":   &types.AttributeValueMemberN{Value: strconv.FormatInt(productVersion, 10)},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return fmt.Errorf("update item (mark done): %w", err)
	}
	return nil
}

// MarkFailed marks the commit as FAILED with a note so a redelivery can claim it again.
func (s *Store) MarkFailed(ctx context.Context, productID string, draftVersion int64, note string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"commit_key": &types.AttributeValueMemberS{Value: CommitKey(productID, draftVersion)},
		},
		UpdateExpression:         awsString("SET #s = :failed, note = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
			":ua":     &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return fmt.Errorf("update item (mark failed): %w", err)
	}
	return nil
}

func conditionFailed(err error) bool {
	var sc smithy.APIError
	return errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException"
}

// Helper
func awsString(s string) *string { return &s }
