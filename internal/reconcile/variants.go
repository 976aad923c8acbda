package reconcile

import (
	"context"
	"errors"
	"fmt"

	"catalogsync/internal/models"
	"catalogsync/internal/repository"
)

// MetadataSKUKey holds a feed SKU that could not be written because another entity owns it.
const MetadataSKUKey = "feed_sku"

// ErrEmptyAttribute is returned when a variant is requested without an attribute value.
var ErrEmptyAttribute = errors.New("variant attribute is empty")

// SKUStatus describes what happened to the SKU carried by a record.
type SKUStatus string

const (
	SKUNone      SKUStatus = ""
	SKUWritten   SKUStatus = "written"
	SKUUnchanged SKUStatus = "unchanged"
	// SKUDegraded means the SKU was stored as metadata instead of on the entity.
	SKUDegraded SKUStatus = "degraded"
	// SKURejected means the SKU was not stored at all.
	SKURejected SKUStatus = "rejected"
)

type SKUWrite struct {
	Status SKUStatus `json:"status,omitempty"`
	SKU    string    `json:"sku,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

type VariantResult struct {
	ID       uint
	SKUWrite SKUWrite
}

// VariantFactory creates variants under a variable parent.
type VariantFactory struct {
	repo    repository.CatalogRepository
	matcher *Matcher
}

func NewVariantFactory(repo repository.CatalogRepository) *VariantFactory {
	return &VariantFactory{repo: repo, matcher: NewMatcher(repo)}
}

// CreateVariant creates a published variant holding attribute and price. The SKU is written
// best-effort: a conflict stores it as metadata and is reported as degraded.
func (f *VariantFactory) CreateVariant(ctx context.Context, parentID uint, attribute, sku, price string) (VariantResult, error) {
	if models.NormalizeAttribute(attribute) == "" {
		return VariantResult{}, ErrEmptyAttribute
	}

	_, exists, err := f.matcher.FindVariant(ctx, parentID, attribute)
	if err != nil {
		return VariantResult{}, err
	}
	if exists {
		return VariantResult{}, fmt.Errorf("%w: %q", repository.ErrDuplicateAttribute, attribute)
	}

	id, err := f.repo.CreateVariant(ctx, parentID, repository.VariantFields{
		Attribute: attribute,
		Status:    models.StatusPublish,
		Price:     price,
	})
	if err != nil {
		return VariantResult{}, fmt.Errorf("failed to create variant %q: %w", attribute, err)
	}

	write, err := f.writeSKU(ctx, id, "", sku)
	if err != nil {
		return VariantResult{ID: id}, err
	}
	return VariantResult{ID: id, SKUWrite: write}, nil
}

// writeSKU assigns sku to a variant unless it already carries it.
func (f *VariantFactory) writeSKU(ctx context.Context, id uint, current, sku string) (SKUWrite, error) {
	if sku == "" {
		return SKUWrite{}, nil
	}
	if sku == current {
		return SKUWrite{Status: SKUUnchanged, SKU: sku}, nil
	}

	err := f.repo.SetSKU(ctx, id, sku)
	switch {
	case err == nil:
		return SKUWrite{Status: SKUWritten, SKU: sku}, nil
	case errors.Is(err, repository.ErrSKUConflict):
		if err := f.repo.SetMetadata(ctx, id, MetadataSKUKey, sku); err != nil {
			return SKUWrite{}, fmt.Errorf("failed to store sku %s as metadata: %w", sku, err)
		}
		return SKUWrite{Status: SKUDegraded, SKU: sku, Reason: err.Error()}, nil
	default:
		return SKUWrite{}, fmt.Errorf("failed to set sku %s: %w", sku, err)
	}
}
