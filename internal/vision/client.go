package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// CloudAnnotator calls the Cloud Vision images:annotate endpoint.
type CloudAnnotator struct {
	svc *visionapi.Service
}

// NewCloudAnnotator builds a client from a base64 encoded service account key.
func NewCloudAnnotator(ctx context.Context, base64ServiceAccount string, opts ...option.ClientOption) (*CloudAnnotator, error) {
	creds, err := base64.StdEncoding.DecodeString(base64ServiceAccount)
	if err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}

	opts = append([]option.ClientOption{
		option.WithCredentialsJSON(creds),
		option.WithScopes(cloudPlatformScope),
	}, opts...)

	svc, err := visionapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &CloudAnnotator{svc: svc}, nil
}

// Annotate sends one request with all features and returns its response.
func (c *CloudAnnotator) Annotate(ctx context.Context, imageURL string, features []string) (*visionapi.AnnotateImageResponse, error) {
	req := &visionapi.AnnotateImageRequest{
		Image: &visionapi.Image{
			Source: &visionapi.ImageSource{ImageUri: imageURL},
		},
	}
	for _, f := range features {
		req.Features = append(req.Features, &visionapi.Feature{Type: f})
	}

	resp, err := c.svc.Images.Annotate(&visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{req},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 {
		return nil, nil
	}
	return resp.Responses[0], nil
}
