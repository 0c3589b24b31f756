package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryShirts   ProductCategory = "shirts"
	CategoryTshirts  ProductCategory = "tshirts"
	CategoryTrousers ProductCategory = "trousers"
	CategorySarees   ProductCategory = "sarees"
	CategoryKurtas   ProductCategory = "kurtas"
)

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	BrandName   string          `gorm:"size:100;not null" json:"brand_name"`
	ProductName string          `gorm:"not null" json:"product_name"`
	Description string          `gorm:"type:text" json:"description"`
	Pattern     string          `gorm:"size:100" json:"pattern"`
	Category    ProductCategory `gorm:"type:varchar(50);index" json:"category"`
	GSTRate     float64         `gorm:"default:0" json:"gst_rate"` // percent, e.g. 5 or 12
	ImageURL    string          `json:"image_url"`
	Popularity  int             `gorm:"default:0;index" json:"popularity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariant is a purchasable (size, color) combination of a product,
// carrying its own price and stock. Cart and order lines always reference a
// variant; a variant without a price is not purchasable.
type ProductVariant struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	Size          string         `gorm:"size:20;not null" json:"size"`
	Color         string         `gorm:"size:50" json:"color"`
	Price         float64        `json:"price"`
	StrikePrice   float64        `json:"strike_price"`
	WeightGrams   int            `gorm:"default:500" json:"weight_grams"` // used for courier pricing
	StockQuantity int            `gorm:"default:0" json:"stock_quantity"`
	Images        string         `gorm:"type:text" json:"images"` // comma-separated URLs
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
