package notification

// MissingProductName is used when the product projection carries no English name.
const MissingProductName = "Product Name Missing"

// Envelope is the Pub/Sub push request body.
type Envelope struct {
	Message      *PushMessage `json:"message"`
	Subscription string       `json:"subscription,omitempty"`
}

// PushMessage is the message part of a Pub/Sub push envelope. Data holds the
// base64 encoded event JSON.
type PushMessage struct {
	Data        string            `json:"data"`
	MessageID   string            `json:"messageId,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Attribute is a product custom attribute. Value keeps the raw JSON type.
type Attribute struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Event is the decoded "product created" notification.
type Event struct {
	ResourceTypeID string      `json:"resourceTypeId,omitempty"`
	ProductID      string      `json:"productId" validate:"required"`
	ImageURL       string      `json:"imageUrl" validate:"required"`
	ProductName    string      `json:"productName"`
	Attributes     []Attribute `json:"attributes"`
}

// payload mirrors the subset of the commerce message we read. Every level is
// optional and scalar leaves keep their raw JSON type; the extractors in
// decoder.go turn them into strings and apply the fallbacks.
type payload struct {
	Resource *struct {
		TypeID interface{} `json:"typeId"`
	} `json:"resource"`
	ProductProjection *struct {
		ID            interface{} `json:"id"`
		Name          interface{} `json:"name"`
		MasterVariant *struct {
			Images []struct {
				URL interface{} `json:"url"`
			} `json:"images"`
			Attributes []Attribute `json:"attributes"`
		} `json:"masterVariant"`
	} `json:"productProjection"`
}
