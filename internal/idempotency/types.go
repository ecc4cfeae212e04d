package idempotency

import (
	"strconv"
	"time"
)

// Status values for commit records
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// CommitRecord tracks one attempt to apply a finalized draft to its product.
type CommitRecord struct {
	CommitKey      string    `dynamodbav:"commit_key"` // PK, see CommitKey
	Status         string    `dynamodbav:"status"`
	ProductID      string    `dynamodbav:"product_id"`
	DraftVersion   int64     `dynamodbav:"draft_version"`
	ProductVersion int64     `dynamodbav:"product_version,omitempty"` // version written on DONE
	ClaimedAt      int64     `dynamodbav:"claimed_at"`                // epoch seconds of the last claim
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// CommitKey identifies the commit of one draft version of one product.
func CommitKey(productID string, draftVersion int64) string {
	return productID + "#" + strconv.FormatInt(draftVersion, 10)
}
