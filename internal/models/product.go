package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Product is a catalog entity: a parent (simple or variable) or a variant of a parent.
type Product struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	ParentID     *uint             `json:"parent_id,omitempty" gorm:"uniqueIndex:idx_products_parent_attribute"`
	Kind         ProductKind       `json:"kind" gorm:"not null;default:simple"`
	ExternalID   *string           `json:"external_id,omitempty" gorm:"uniqueIndex"`
	SKU          *string           `json:"sku,omitempty" gorm:"uniqueIndex"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       ProductStatus     `json:"status" gorm:"not null;default:publish"`
	Attribute    string            `json:"attribute,omitempty"`
	AttributeKey *string           `json:"-" gorm:"uniqueIndex:idx_products_parent_attribute"`
	Price        string            `json:"price" gorm:"type:varchar(32)"`
	ImageID      *uint             `json:"image_id,omitempty"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	Variants []Product `json:"variants,omitempty" gorm:"foreignKey:ParentID"`
}

type ProductKind string

const (
	KindSimple   ProductKind = "simple"
	KindVariable ProductKind = "variable"
	KindVariant  ProductKind = "variant"
)

type ProductStatus string

const (
	StatusPublish ProductStatus = "publish"
	StatusDraft   ProductStatus = "draft"
)

// StatusFor maps a feed active flag onto a store status.
func StatusFor(active bool) ProductStatus {
	if active {
		return StatusPublish
	}
	return StatusDraft
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) IsVariable() bool {
	return p.Kind == KindVariable
}

func (p *Product) IsVariant() bool {
	return p.Kind == KindVariant
}

// SKUValue returns the SKU or an empty string when unset.
func (p *Product) SKUValue() string {
	if p.SKU == nil {
		return ""
	}
	return *p.SKU
}

// NormalizeAttribute is the comparison form of a variant attribute value.
func NormalizeAttribute(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
