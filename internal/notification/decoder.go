package notification

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoData is returned when the envelope carries no message data.
var ErrNoData = errors.New("no data found in Pub/Sub message")

// Decode turns a push envelope into an Event. ErrNoData is the only
// client-facing failure; undecodable base64 or JSON are processing errors.
func Decode(env Envelope) (Event, error) {
	raw, err := messageData(env)
	if err != nil {
		return Event{}, err
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Event{}, fmt.Errorf("parse message data: %w", err)
	}

	return Event{
		ResourceTypeID: resourceTypeID(p),
		ProductID:      productID(p),
		ImageURL:       firstImageURL(p),
		ProductName:    productName(p),
		Attributes:     attributes(p),
	}, nil
}

func messageData(env Envelope) (string, error) {
	if env.Message == nil || strings.TrimSpace(env.Message.Data) == "" {
		return "", ErrNoData
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(env.Message.Data))
	if err != nil {
		return "", fmt.Errorf("decode message data: %w", err)
	}
	data := strings.TrimSpace(string(decoded))
	if data == "" {
		return "", ErrNoData
	}
	return data, nil
}

func resourceTypeID(p payload) string {
	if p.Resource == nil {
		return ""
	}
	return text(p.Resource.TypeID)
}

func productID(p payload) string {
	if p.ProductProjection == nil {
		return ""
	}
	return text(p.ProductProjection.ID)
}

// firstImageURL returns "" when the projection has no images.
func firstImageURL(p payload) string {
	if p.ProductProjection == nil || p.ProductProjection.MasterVariant == nil {
		return ""
	}
	images := p.ProductProjection.MasterVariant.Images
	if len(images) == 0 {
		return ""
	}
	return text(images[0].URL)
}

func productName(p payload) string {
	if p.ProductProjection == nil {
		return MissingProductName
	}
	localized, ok := p.ProductProjection.Name.(map[string]interface{})
	if !ok {
		return MissingProductName
	}
	if name := text(localized["en"]); name != "" {
		return name
	}
	return MissingProductName
}

// text renders a scalar JSON value as a string. null, false, 0 and "" give "",
// so they count as absent like a missing field.
func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if !t {
			return ""
		}
		return "true"
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func attributes(p payload) []Attribute {
	if p.ProductProjection == nil || p.ProductProjection.MasterVariant == nil {
		return []Attribute{}
	}
	if attrs := p.ProductProjection.MasterVariant.Attributes; attrs != nil {
		return attrs
	}
	return []Attribute{}
}
