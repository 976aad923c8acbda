package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"catalogsync/internal/models"

	"gorm.io/datatypes"
)

// MemoryCatalog is an in-process CatalogRepository enforcing the same uniqueness rules as
// the database schema. It backs dry runs and tests.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[uint]*models.Product
	assets   map[uint]*models.Asset
	nextID   uint
	now      func() time.Time
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		products: make(map[uint]*models.Product),
		assets:   make(map[uint]*models.Asset),
		now:      time.Now,
	}
}

func (m *MemoryCatalog) FindParentByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.sortedIDs() {
		p := m.products[id]
		if p.ParentID == nil && p.ExternalID != nil && *p.ExternalID == externalID {
			return clone(p), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryCatalog) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p := m.bySKU(sku); p != nil {
		return clone(p), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryCatalog) Get(ctx context.Context, id uint) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (m *MemoryCatalog) CreateParent(ctx context.Context, fields ParentFields) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fields.SKU != "" && m.bySKU(fields.SKU) != nil {
		return 0, ErrSKUConflict
	}
	for _, p := range m.products {
		if p.ParentID == nil && p.ExternalID != nil && *p.ExternalID == fields.ExternalID {
			return 0, ErrDuplicateExternalID
		}
	}

	kind := fields.Kind
	if kind == "" {
		kind = models.KindSimple
	}
	externalID := fields.ExternalID
	return m.insert(&models.Product{
		Kind:        kind,
		ExternalID:  &externalID,
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		SKU:         optional(fields.SKU),
		Price:       fields.Price,
	}), nil
}

func (m *MemoryCatalog) UpdateEntity(ctx context.Context, id uint, update EntityUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	p.UpdatedAt = m.now()
	return nil
}

func (m *MemoryCatalog) ListVariants(ctx context.Context, parentID uint) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var variants []models.Product
	for _, id := range m.sortedIDs() {
		p := m.products[id]
		if p.ParentID != nil && *p.ParentID == parentID {
			variants = append(variants, *clone(p))
		}
	}
	return variants, nil
}

func (m *MemoryCatalog) SetPrice(ctx context.Context, id uint, price string) error {
	return m.mutate(id, func(p *models.Product) error {
		p.Price = price
		return nil
	})
}

func (m *MemoryCatalog) SetSKU(ctx context.Context, id uint, sku string) error {
	return m.mutate(id, func(p *models.Product) error {
		if holder := m.bySKU(sku); sku != "" && holder != nil && holder.ID != id {
			return ErrSKUConflict
		}
		p.SKU = optional(sku)
		return nil
	})
}

func (m *MemoryCatalog) SetMetadata(ctx context.Context, id uint, key string, value interface{}) error {
	return m.mutate(id, func(p *models.Product) error {
		if p.Metadata == nil {
			p.Metadata = datatypes.JSONMap{}
		}
		p.Metadata[key] = value
		return nil
	})
}

func (m *MemoryCatalog) CreateVariant(ctx context.Context, parentID uint, fields VariantFields) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[parentID]; !ok {
		return 0, ErrNotFound
	}
	key := models.NormalizeAttribute(fields.Attribute)
	for _, p := range m.products {
		if p.ParentID != nil && *p.ParentID == parentID && p.AttributeKey != nil && *p.AttributeKey == key {
			return 0, ErrDuplicateAttribute
		}
	}

	status := fields.Status
	if status == "" {
		status = models.StatusPublish
	}
	parent := parentID
	return m.insert(&models.Product{
		ParentID:     &parent,
		Kind:         models.KindVariant,
		Status:       status,
		Attribute:    strings.TrimSpace(fields.Attribute),
		AttributeKey: &key,
		Price:        fields.Price,
	}), nil
}

func (m *MemoryCatalog) CreateAsset(ctx context.Context, asset *models.Asset) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	asset.ID = m.nextID
	asset.CreatedAt = m.now()
	stored := *asset
	m.assets[asset.ID] = &stored
	return asset.ID, nil
}

func (m *MemoryCatalog) DeleteAsset(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[id]; !ok {
		return ErrNotFound
	}
	delete(m.assets, id)
	return nil
}

func (m *MemoryCatalog) SetPrimaryImage(ctx context.Context, entityID, assetID uint) error {
	return m.mutate(entityID, func(p *models.Product) error {
		id := assetID
		p.ImageID = &id
		return nil
	})
}

// Assets returns the assets owned by an entity in creation order.
func (m *MemoryCatalog) Assets(entityID uint) []models.Asset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Asset
	for _, a := range m.assets {
		if a.ProductID == entityID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of catalog entities.
func (m *MemoryCatalog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

func (m *MemoryCatalog) insert(p *models.Product) uint {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = m.now()
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = p
	return p.ID
}

func (m *MemoryCatalog) mutate(id uint, fn func(p *models.Product) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(p); err != nil {
		return err
	}
	p.UpdatedAt = m.now()
	return nil
}

func (m *MemoryCatalog) bySKU(sku string) *models.Product {
	for _, id := range m.sortedIDs() {
		p := m.products[id]
		if p.SKU != nil && *p.SKU == sku {
			return p
		}
	}
	return nil
}

func (m *MemoryCatalog) sortedIDs() []uint {
	ids := make([]uint, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func clone(p *models.Product) *models.Product {
	c := *p
	if p.Metadata != nil {
		c.Metadata = datatypes.JSONMap{}
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

var _ CatalogRepository = (*MemoryCatalog)(nil)
