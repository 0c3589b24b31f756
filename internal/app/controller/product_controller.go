package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	apperrors "github.com/vastrakart/vastrakart-backend/internal/errors"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	BrandName   string                `json:"brand_name" binding:"required"`
	ProductName string                `json:"product_name" binding:"required"`
	Description string                `json:"description"`
	Pattern     string                `json:"pattern"`
	Category    model.ProductCategory `json:"category" binding:"required"`
	GSTRate     float64               `json:"gst_rate"`
	ImageURL    string                `json:"image_url"`

	Variants []CreateVariantRequest `json:"variants"`
}

type CreateVariantRequest struct {
	Size          string  `json:"size" binding:"required"`
	Color         string  `json:"color"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	StrikePrice   float64 `json:"strike_price"`
	WeightGrams   int     `json:"weight_grams"`
	StockQuantity int     `json:"stock_quantity"`
	Images        string  `json:"images"`
}

// GetProducts lists the catalog with filters and pagination
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	search := c.Query("q")
	if search == "" {
		search = c.Query("search")
	}

	filter := repository.ProductFilter{
		Category: c.Query("category"),
		Pattern:  c.Query("pattern"),
		Brand:    c.Query("brand"),
		Search:   search,
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}

	listing, err := ctrl.productService.GetProducts(filter)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetProduct returns one product with its variants
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.GetProduct(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct adds a product to the catalog
// POST /api/v1/products (seller/admin)
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product := &model.Product{
		BrandName:   req.BrandName,
		ProductName: req.ProductName,
		Description: req.Description,
		Pattern:     req.Pattern,
		Category:    req.Category,
		GSTRate:     req.GSTRate,
		ImageURL:    req.ImageURL,
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, model.ProductVariant{
			Size:          v.Size,
			Color:         v.Color,
			Price:         v.Price,
			StrikePrice:   v.StrikePrice,
			WeightGrams:   v.WeightGrams,
			StockQuantity: v.StockQuantity,
			Images:        v.Images,
		})
	}

	if err := ctrl.productService.CreateProduct(product); err != nil {
		log.Error("Failed to create product", err, nil)
		apperrors.InternalError(c, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// UpdateProduct updates catalog fields of a product
// PUT /api/v1/products/:id (seller/admin)
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	updated := &model.Product{
		BrandName:   req.BrandName,
		ProductName: req.ProductName,
		Description: req.Description,
		Pattern:     req.Pattern,
		Category:    req.Category,
		GSTRate:     req.GSTRate,
		ImageURL:    req.ImageURL,
	}

	if err := ctrl.productService.UpdateProduct(uint(id), updated); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
	})
}

// DeleteProduct removes a product from the catalog
// DELETE /api/v1/products/:id (admin)
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	if err := ctrl.productService.DeleteProduct(uint(id)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}
