package validation

import (
	"errors"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-product-describer/internal/notification"
)

// New returns a validator configured for notification events.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// image references must be absolute URLs the vision service can fetch
	v.RegisterStructValidation(eventStructValidation, notification.Event{})

	return v
}

// eventStructValidation reports a non-URL image reference. Empty values are
// left to the `required` tag.
func eventStructValidation(sl validatorv10.StructLevel) {
	ev := sl.Current().Interface().(notification.Event)
	if ev.ImageURL == "" {
		return
	}
	if err := sl.Validator().Var(ev.ImageURL, "url"); err != nil {
		sl.ReportError(ev.ImageURL, "imageUrl", "ImageURL", "url", "")
	}
}

// Eligibility decides whether an event should be enriched.
type Eligibility struct {
	v *validatorv10.Validate
}

// NewEligibility returns an Eligibility backed by New().
func NewEligibility() *Eligibility {
	return &Eligibility{v: New()}
}

// Validate checks the core fields, then the attributes, then the flag.
func (e *Eligibility) Validate(ev notification.Event) (Decision, error) {
	if err := e.v.Struct(ev); err != nil {
		var ve validatorv10.ValidationErrors
		if errors.As(err, &ve) && missingRequired(ve) {
			return Decision{}, ErrMissingCoreFields
		}
		return Decision{}, err
	}

	if len(ev.Attributes) == 0 {
		return Decision{}, ErrNoAttributes
	}

	if !GenerateDescriptionEnabled(ev.Attributes) {
		return Decision{Outcome: OutcomeDisabled, Event: ev}, nil
	}
	return Decision{Outcome: OutcomeProceed, Event: ev}, nil
}

// missingRequired reports whether any core field is absent. An absent field
// outranks a malformed one.
func missingRequired(ve validatorv10.ValidationErrors) bool {
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}

// GenerateDescriptionEnabled reports whether the first generateDescription
// attribute holds a truthy value.
func GenerateDescriptionEnabled(attrs []notification.Attribute) bool {
	for _, a := range attrs {
		if a.Name == GenerateDescriptionAttribute {
			return truthy(a.Value)
		}
	}
	return false
}

// truthy follows JSON-value truthiness: null, false, 0, NaN and "" are false;
// objects and arrays are true even when empty.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}
