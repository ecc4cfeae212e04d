package validation

import (
	"errors"

	"github.com/imrishuroy/go-product-describer/internal/notification"
)

// GenerateDescriptionAttribute is the product attribute that switches enrichment on.
const GenerateDescriptionAttribute = "generateDescription"

var (
	// ErrMissingCoreFields means the event has no product id or no image url.
	ErrMissingCoreFields = errors.New("product id or image url missing from the product data")
	// ErrNoAttributes means the product carries no custom attributes at all.
	ErrNoAttributes = errors.New("no attributes found in the product data")
)

// Outcome is the result of the eligibility check.
type Outcome int

const (
	// OutcomeProceed means enrichment should run.
	OutcomeProceed Outcome = iota + 1
	// OutcomeDisabled means the product opted out; not an error.
	OutcomeDisabled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProceed:
		return "proceed"
	case OutcomeDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Decision carries the validated event and what to do with it.
type Decision struct {
	Outcome Outcome
	Event   notification.Event
}
