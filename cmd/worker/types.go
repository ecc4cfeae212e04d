package main

import (
	"context"

	"github.com/imrishuroy/go-product-describer/internal/drafts"
	"github.com/imrishuroy/go-product-describer/internal/products"
)

// descriptionLocale is the product locale the generated text is written to.
const descriptionLocale = "en"

// CommitGuard claims and settles one commit per (product, draft version).
// Claim returns idempotency.ErrCommitInProgress while another claim is live.
type CommitGuard interface {
	Claim(ctx context.Context, productID string, draftVersion int64) (bool, error)
	MarkDone(ctx context.Context, productID string, draftVersion, productVersion int64) error
	MarkFailed(ctx context.Context, productID string, draftVersion int64, note string) error
}

// DraftReader reads finalized drafts.
type DraftReader interface {
	Get(ctx context.Context, productID string) (*drafts.Record, error)
}

// ProductWriter applies version-checked product updates.
type ProductWriter interface {
	Get(ctx context.Context, productID string) (*products.Product, error)
	Update(ctx context.Context, productID string, expectedVersion int64, actions ...products.Action) (*products.Product, error)
}
