package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalogsync/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormCatalog implements CatalogRepository on top of gorm.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (r *GormCatalog) FindParentByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("external_id = ? AND parent_id IS NULL", externalID).
		First(&product).Error
	if err != nil {
		return nil, translateLookup(err, "find parent by external id")
	}
	return &product, nil
}

func (r *GormCatalog) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, translateLookup(err, "find by sku")
	}
	return &product, nil
}

func (r *GormCatalog) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translateLookup(err, "get entity")
	}
	return &product, nil
}

func (r *GormCatalog) CreateParent(ctx context.Context, fields ParentFields) (uint, error) {
	externalID := fields.ExternalID
	product := models.Product{
		Kind:        fields.Kind,
		ExternalID:  &externalID,
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		SKU:         optional(fields.SKU),
		Price:       fields.Price,
	}
	if product.Kind == "" {
		product.Kind = models.KindSimple
	}

	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		if isDuplicate(err) {
			if fields.SKU != "" {
				if _, lookupErr := r.FindBySKU(ctx, fields.SKU); lookupErr == nil {
					return 0, ErrSKUConflict
				}
			}
			return 0, ErrDuplicateExternalID
		}
		return 0, fmt.Errorf("failed to create parent: %w", err)
	}
	return product.ID, nil
}

func (r *GormCatalog) UpdateEntity(ctx context.Context, id uint, update EntityUpdate) error {
	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = *update.Title
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Status != nil {
		changes["status"] = *update.Status
	}
	if len(changes) == 0 {
		return nil
	}
	return r.updateColumns(ctx, id, changes, "update entity")
}

func (r *GormCatalog) ListVariants(ctx context.Context, parentID uint) ([]models.Product, error) {
	var variants []models.Product
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	return variants, nil
}

func (r *GormCatalog) SetPrice(ctx context.Context, id uint, price string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"price": price}, "set price")
}

func (r *GormCatalog) SetSKU(ctx context.Context, id uint, sku string) error {
	err := r.updateColumns(ctx, id, map[string]interface{}{"sku": optional(sku)}, "set sku")
	if err != nil && isDuplicate(err) {
		return ErrSKUConflict
	}
	return err
}

func (r *GormCatalog) SetMetadata(ctx context.Context, id uint, key string, value interface{}) error {
	product, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	meta := product.Metadata
	if meta == nil {
		meta = datatypes.JSONMap{}
	}
	meta[key] = value
	return r.updateColumns(ctx, id, map[string]interface{}{"metadata": meta}, "set metadata")
}

func (r *GormCatalog) CreateVariant(ctx context.Context, parentID uint, fields VariantFields) (uint, error) {
	key := models.NormalizeAttribute(fields.Attribute)
	variant := models.Product{
		ParentID:     &parentID,
		Kind:         models.KindVariant,
		Status:       fields.Status,
		Attribute:    strings.TrimSpace(fields.Attribute),
		AttributeKey: &key,
		Price:        fields.Price,
	}
	if variant.Status == "" {
		variant.Status = models.StatusPublish
	}

	if err := r.db.WithContext(ctx).Create(&variant).Error; err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicateAttribute
		}
		return 0, fmt.Errorf("failed to create variant: %w", err)
	}
	return variant.ID, nil
}

func (r *GormCatalog) CreateAsset(ctx context.Context, asset *models.Asset) (uint, error) {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return 0, fmt.Errorf("failed to create asset: %w", err)
	}
	return asset.ID, nil
}

func (r *GormCatalog) DeleteAsset(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Asset{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCatalog) SetPrimaryImage(ctx context.Context, entityID, assetID uint) error {
	return r.updateColumns(ctx, entityID, map[string]interface{}{"image_id": assetID}, "set primary image")
}

func (r *GormCatalog) updateColumns(ctx context.Context, id uint, changes map[string]interface{}, op string) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return result.Error
		}
		return fmt.Errorf("failed to %s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translateLookup(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// isDuplicate recognizes unique violations whether or not the dialect translated them.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

var _ CatalogRepository = (*GormCatalog)(nil)
