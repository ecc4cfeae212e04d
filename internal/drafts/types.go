package drafts

import "time"

// Container is the namespace all description drafts live in.
const Container = "temporaryDescription"

// Draft lifecycle states
const (
	StatePending   = "DRAFT_PENDING"
	StateFinalized = "DRAFT_FINALIZED"
)

// Record is the item stored in the drafts DynamoDB table.
// The table key is (container, key); key is the product id.
type Record struct {
	Container            string     `dynamodbav:"container"` // PK
	Key                  string     `dynamodbav:"key"`       // SK, product id
	State                string     `dynamodbav:"state"`     // DRAFT_PENDING | DRAFT_FINALIZED
	ImageURL             string     `dynamodbav:"image_url"`
	ProductName          string     `dynamodbav:"product_name"`
	TemporaryDescription *string    `dynamodbav:"temporary_description,omitempty"` // absent until finalized
	GeneratedAt          *time.Time `dynamodbav:"generated_at,omitempty"`
	Version              int64      `dynamodbav:"version"`
	CreatedAt            time.Time  `dynamodbav:"created_at"`
	UpdatedAt            time.Time  `dynamodbav:"updated_at"`
}

// Finalized reports whether the draft carries a generated description.
func (r *Record) Finalized() bool {
	return r.State == StateFinalized && r.TemporaryDescription != nil
}
