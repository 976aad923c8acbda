package repository

import (
	"context"
	"errors"

	"catalogsync/internal/models"
)

var (
	// ErrNotFound is returned when no entity matches a lookup.
	ErrNotFound = errors.New("catalog entity not found")
	// ErrSKUConflict is returned when a SKU is already held by another entity.
	ErrSKUConflict = errors.New("sku already in use")
	// ErrDuplicateExternalID is returned when a parent already maps the external id.
	ErrDuplicateExternalID = errors.New("external id already mapped")
	// ErrDuplicateAttribute is returned when a parent already has a variant with the same attribute value.
	ErrDuplicateAttribute = errors.New("variant attribute already exists for parent")
)

// ParentFields describe a new top-level entity.
type ParentFields struct {
	ExternalID  string
	Kind        models.ProductKind
	Title       string
	Description string
	Status      models.ProductStatus
	SKU         string
	Price       string
}

// VariantFields describe a new child entity. The SKU is written separately so that a
// conflict does not prevent the variant from being created.
type VariantFields struct {
	Attribute string
	Status    models.ProductStatus
	Price     string
}

// EntityUpdate lists the descriptive fields to overwrite; nil fields are left untouched.
type EntityUpdate struct {
	Title       *string
	Description *string
	Status      *models.ProductStatus
}

// CatalogRepository is the capability set the importer needs from the catalog store.
// Every write is committed on its own.
type CatalogRepository interface {
	// FindParentByExternalID returns the parent mapped to an external id or ErrNotFound.
	FindParentByExternalID(ctx context.Context, externalID string) (*models.Product, error)

	// FindBySKU returns the parent or variant holding the SKU or ErrNotFound.
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)

	Get(ctx context.Context, id uint) (*models.Product, error)

	CreateParent(ctx context.Context, fields ParentFields) (uint, error)

	UpdateEntity(ctx context.Context, id uint, update EntityUpdate) error

	// ListVariants returns the children of a parent in ascending id order.
	ListVariants(ctx context.Context, parentID uint) ([]models.Product, error)

	SetPrice(ctx context.Context, id uint, price string) error

	// SetSKU assigns a SKU, returning ErrSKUConflict when another entity holds it.
	SetSKU(ctx context.Context, id uint, sku string) error

	SetMetadata(ctx context.Context, id uint, key string, value interface{}) error

	CreateVariant(ctx context.Context, parentID uint, fields VariantFields) (uint, error)

	CreateAsset(ctx context.Context, asset *models.Asset) (uint, error)

	// DeleteAsset removes an asset row that never became usable. Unknown ids return ErrNotFound.
	DeleteAsset(ctx context.Context, id uint) error

	// SetPrimaryImage designates the asset as the entity's primary image, replacing any previous one.
	SetPrimaryImage(ctx context.Context, entityID, assetID uint) error
}

// RunRepository persists import run summaries.
type RunRepository interface {
	Create(ctx context.Context, run *models.ImportRun) error
	Save(ctx context.Context, run *models.ImportRun) error
	List(ctx context.Context, limit int) ([]models.ImportRun, error)
	Get(ctx context.Context, id string) (*models.ImportRun, error)
}
