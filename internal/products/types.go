package products

import "time"

// Product represents the canonical product item in the products DynamoDB table.
type Product struct {
	ProductID   string            `dynamodbav:"product_id"` // PK
	Version     int64             `dynamodbav:"version"`
	Name        map[string]string `dynamodbav:"name,omitempty"`        // locale -> text
	Description map[string]string `dynamodbav:"description,omitempty"` // locale -> text
	ImageURLs   []string          `dynamodbav:"image_urls,omitempty"`
	CreatedAt   time.Time         `dynamodbav:"created_at"`
	UpdatedAt   time.Time         `dynamodbav:"updated_at"`
}

// Action is one change applied by Store.Update.
type Action interface {
	Apply(p *Product)
}

// SetDescription sets the description for one locale, keeping the others.
type SetDescription struct {
	Locale string
	Text   string
}

// Apply implements Action.
func (a SetDescription) Apply(p *Product) {
	if p.Description == nil {
		p.Description = map[string]string{}
	}
	p.Description[a.Locale] = a.Text
}
