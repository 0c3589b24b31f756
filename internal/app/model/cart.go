package model

import (
	"time"

	"gorm.io/gorm"
)

// Cart quantity bounds enforced at binding and service level
const (
	MinCartQuantity = 1
	MaxCartQuantity = 10
)

type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	VariantID *uint          `gorm:"index" json:"variant_id,omitempty"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`

	// Derived on read; items failing Purchasable are excluded from totals
	IsPurchasable bool `gorm:"-" json:"purchasable"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User            `gorm:"foreignKey:UserID" json:"-"`
	Product Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Purchasable reports whether the item still resolves to a priced variant.
// Items failing this are excluded from totals and the displayed item count
// (the variant may have been deleted or never had price details populated).
func (c *CartItem) Purchasable() bool {
	return c.VariantID != nil && c.Variant != nil && c.Variant.ID != 0 && c.Variant.Price > 0
}
