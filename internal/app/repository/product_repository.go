package repository

import (
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Pattern  string
	Brand    string
	Search   string
	Sort     string // "popularity", "price_asc", "price_desc", "newest"
	Page     int
	PageSize int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindAll(filter ProductFilter) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(id uint) error
	FindVariantByID(id uint) (*model.ProductVariant, error)
	UpdateVariant(variant *model.ProductVariant) error
	DecrementStock(tx *gorm.DB, variantID uint, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"product_name": product.ProductName,
		"brand_name":   product.BrandName,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"product_name": product.ProductName,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id":   product.ID,
		"product_name": product.ProductName,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.Preload("Variants").First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Debug("Product found by ID in database", map[string]interface{}{
		"product_id":    product.ID,
		"product_name":  product.ProductName,
		"variant_count": len(product.Variants),
	})
	return &product, nil
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products in database", map[string]interface{}{
		"category": filter.Category,
		"pattern":  filter.Pattern,
		"search":   filter.Search,
		"page":     filter.Page,
	})

	query := r.db.Model(&model.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Pattern != "" {
		query = query.Where("pattern = ?", filter.Pattern)
	}
	if filter.Brand != "" {
		query = query.Where("brand_name = ?", filter.Brand)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("product_name LIKE ? OR brand_name LIKE ? OR description LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products in database", err)
		return nil, 0, err
	}

	switch filter.Sort {
	case "price_asc":
		query = query.Joins("LEFT JOIN product_variants pv ON pv.product_id = products.id").
			Group("products.id").
			Order("MIN(pv.price) ASC")
	case "price_desc":
		query = query.Joins("LEFT JOIN product_variants pv ON pv.product_id = products.id").
			Group("products.id").
			Order("MIN(pv.price) DESC")
	case "newest":
		query = query.Order("products.created_at DESC")
	default:
		query = query.Order("products.popularity DESC")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	var products []model.Product
	if err := query.Preload("Variants").Find(&products).Error; err != nil {
		logger.Error("Failed to find products in database", err)
		return nil, 0, err
	}

	logger.Debug("Products found in database", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (r *productRepository) FindVariantByID(id uint) (*model.ProductVariant, error) {
	logger.Debug("Finding product variant by ID in database", map[string]interface{}{
		"variant_id": id,
	})

	var variant model.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		logger.Error("Failed to find product variant by ID in database", err, map[string]interface{}{
			"variant_id": id,
		})
		return nil, err
	}

	logger.Debug("Product variant found by ID in database", map[string]interface{}{
		"variant_id": variant.ID,
		"product_id": variant.ProductID,
		"size":       variant.Size,
	})
	return &variant, nil
}

func (r *productRepository) UpdateVariant(variant *model.ProductVariant) error {
	logger.Debug("Updating product variant in database", map[string]interface{}{
		"variant_id": variant.ID,
		"product_id": variant.ProductID,
	})

	if err := r.db.Save(variant).Error; err != nil {
		logger.Error("Failed to update product variant in database", err, map[string]interface{}{
			"variant_id": variant.ID,
		})
		return err
	}

	logger.Debug("Product variant updated in database", map[string]interface{}{
		"variant_id": variant.ID,
	})
	return nil
}

// DecrementStock subtracts quantity from a variant's stock inside the
// caller's transaction. Fails when remaining stock is insufficient.
func (r *productRepository) DecrementStock(tx *gorm.DB, variantID uint, quantity int) error {
	logger.Debug("Decrementing variant stock in database", map[string]interface{}{
		"variant_id": variantID,
		"quantity":   quantity,
	})

	result := tx.Model(&model.ProductVariant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		logger.Error("Failed to decrement variant stock in database", result.Error, map[string]interface{}{
			"variant_id": variantID,
			"quantity":   quantity,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Warn("Insufficient stock for variant", map[string]interface{}{
			"variant_id": variantID,
			"quantity":   quantity,
		})
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Variant stock decremented in database", map[string]interface{}{
		"variant_id": variantID,
		"quantity":   quantity,
	})
	return nil
}
