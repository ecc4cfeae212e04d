package drafts

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// draftMock is an in-memory drafts table. It understands exactly the
// expressions the Store issues.
type draftMock struct {
	mu          sync.Mutex
	items       map[string]map[string]types.AttributeValue
	getCalls    int
	updateCalls int
	afterGet    func() // runs after GetItem returns its snapshot, outside the lock
	updateErr   error
}

func newDraftMock() *draftMock {
	return &draftMock{items: map[string]map[string]types.AttributeValue{}}
}

func pk(key map[string]types.AttributeValue) (string, error) {
	c, ok1 := key["container"].(*types.AttributeValueMemberS)
	k, ok2 := key["key"].(*types.AttributeValueMemberS)
	if !ok1 || !ok2 {
		return "", errors.New("missing key attribute")
	}
	return c.Value + "/" + k.Value, nil
}

func copyItem(in map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func version(item map[string]types.AttributeValue) int64 {
	n, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	v, _ := strconv.ParseInt(n.Value, 10, 64)
	return v
}

func (m *draftMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return nil, errors.New("PutItem not used by drafts store")
}

func (m *draftMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	m.getCalls++
	k, err := pk(params.Key)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	item, ok := m.items[k]
	var out *dyn.GetItemOutput
	if ok {
		out = &dyn.GetItemOutput{Item: copyItem(item)}
	} else {
		out = &dyn.GetItemOutput{}
	}
	hook := m.afterGet
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *draftMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	k, err := pk(params.Key)
	if err != nil {
		return nil, err
	}
	vals := params.ExpressionAttributeValues
	existing, exists := m.items[k]
	item := copyItem(params.Key)
	if exists {
		item = copyItem(existing)
	}

	switch *params.UpdateExpression {
	case createExpr:
		item["state"] = vals[":state"]
		item["image_url"] = vals[":img"]
		item["product_name"] = vals[":name"]
		item["created_at"] = vals[":now"]
		item["updated_at"] = vals[":now"]
		item["version"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(version(item)+1, 10)}
		delete(item, "temporary_description")
		delete(item, "generated_at")
	case finalizeExpr:
		if params.ConditionExpression == nil || *params.ConditionExpression != versionCondition {
			return nil, errors.New("finalize without version condition")
		}
		if !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		expected := vals[":expected"].(*types.AttributeValueMemberN).Value
		if strconv.FormatInt(version(item), 10) != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item["state"] = vals[":state"]
		item["temporary_description"] = vals[":desc"]
		item["image_url"] = vals[":img"]
		item["product_name"] = vals[":name"]
		item["generated_at"] = vals[":ga"]
		item["updated_at"] = vals[":ga"]
		item["version"] = vals[":next"]
	default:
		return nil, errors.New("unexpected update expression: " + *params.UpdateExpression)
	}

	m.items[k] = item
	return &dyn.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

// bump simulates another writer advancing the stored version.
func (m *draftMock) bump(productID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := Container + "/" + productID
	item := m.items[k]
	item["version"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(version(item)+1, 10)}
}
