package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 10")
	ErrInvalidVariant   = errors.New("invalid product variant")
)

const cartCountCacheTTL = time.Hour

// CartCache caches the per-user cart badge count
type CartCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type CartService interface {
	GetUserCart(userID uint) ([]model.CartItem, error)
	GetCartCount(ctx context.Context, userID uint) (int64, error)
	AddToCart(ctx context.Context, userID, productID uint, variantID *uint, quantity int) error
	UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) error
	UpdateSize(ctx context.Context, userID, cartItemID uint, size string) error
	RemoveFromCart(ctx context.Context, userID, cartItemID uint) error
	ClearCart(ctx context.Context, userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       CartCache
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	cache CartCache,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cache:       cache,
	}
}

func cartCountKey(userID uint) string {
	return fmt.Sprintf("cart_count:%d", userID)
}

func (s *cartService) invalidateCount(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cartCountKey(userID)); err != nil {
		logger.Warn("Failed to invalidate cart count cache", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *cartService) GetUserCart(userID uint) ([]model.CartItem, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for i := range cartItems {
		cartItems[i].IsPurchasable = cartItems[i].Purchasable()
	}

	logger.Info("User cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(cartItems),
	})
	return cartItems, nil
}

func (s *cartService) GetCartCount(ctx context.Context, userID uint) (int64, error) {
	if s.cache != nil {
		var cached int64
		hit, err := s.cache.GetJSON(ctx, cartCountKey(userID), &cached)
		if err != nil {
			logger.Warn("Cart count cache read failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else if hit {
			return cached, nil
		}
	}

	count, err := s.cartRepo.CountByUserID(userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cartCountKey(userID), count, cartCountCacheTTL); err != nil {
			logger.Warn("Cart count cache write failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return count, nil
}

func (s *cartService) AddToCart(ctx context.Context, userID, productID uint, variantID *uint, quantity int) error {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	})

	if quantity < model.MinCartQuantity || quantity > model.MaxCartQuantity {
		return ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}

	var variant *model.ProductVariant
	if variantID != nil {
		v, err := s.productRepo.FindVariantByID(*variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product variant not found", map[string]interface{}{
					"variant_id": *variantID,
				})
				return ErrInvalidVariant
			}
			logger.Error("Failed to fetch product variant", err, map[string]interface{}{
				"variant_id": *variantID,
			})
			return err
		}
		if v.ProductID != product.ID {
			logger.Warn("Product variant mismatch", map[string]interface{}{
				"product_id": productID,
				"variant_id": *variantID,
			})
			return ErrInvalidVariant
		}
		variant = v
	}

	existingItem, err := s.cartRepo.FindByUserProductVariant(userID, productID, variantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}

	requestedQuantity := quantity
	if existingItem != nil {
		requestedQuantity = existingItem.Quantity + quantity
		if requestedQuantity > model.MaxCartQuantity {
			requestedQuantity = model.MaxCartQuantity
		}
	}

	if variant != nil && variant.StockQuantity < requestedQuantity {
		logger.Warn("Cannot add to cart: insufficient variant stock", map[string]interface{}{
			"user_id":    userID,
			"variant_id": variant.ID,
			"requested":  requestedQuantity,
			"available":  variant.StockQuantity,
		})
		return ErrInsufficientStock
	}

	if existingItem != nil {
		logger.Debug("Updating existing cart item", map[string]interface{}{
			"cart_item_id": existingItem.ID,
			"old_qty":      existingItem.Quantity,
			"new_qty":      requestedQuantity,
		})
		existingItem.Quantity = requestedQuantity
		if err := s.cartRepo.Update(existingItem); err != nil {
			logger.Error("Failed to update cart item", err, map[string]interface{}{
				"cart_item_id": existingItem.ID,
			})
			return err
		}
		s.invalidateCount(ctx, userID)
		return nil
	}

	cartItem := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	}

	if err := s.cartRepo.Create(cartItem); err != nil {
		logger.Error("Failed to create cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}

	s.invalidateCount(ctx, userID)
	logger.Info("Cart item added successfully", map[string]interface{}{
		"cart_item_id": cartItem.ID,
	})
	return nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) error {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})

	if quantity < model.MinCartQuantity || quantity > model.MaxCartQuantity {
		return ErrInvalidQuantity
	}

	cartItem, err := s.ownedCartItem(userID, cartItemID)
	if err != nil {
		return err
	}

	if cartItem.Variant != nil && cartItem.Variant.StockQuantity < quantity {
		logger.Warn("Cannot update cart item: insufficient variant stock", map[string]interface{}{
			"cart_item_id": cartItemID,
			"requested":    quantity,
			"available":    cartItem.Variant.StockQuantity,
		})
		return ErrInsufficientStock
	}

	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(cartItem); err != nil {
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	s.invalidateCount(ctx, userID)
	logger.Info("Cart item quantity updated", map[string]interface{}{
		"cart_item_id": cartItemID,
	})
	return nil
}

// UpdateSize swaps a cart item to the sibling variant carrying the requested
// size. The item keeps its quantity, capped to the new variant's stock.
func (s *cartService) UpdateSize(ctx context.Context, userID, cartItemID uint, size string) error {
	logger.Info("Updating cart item size", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
		"size":         size,
	})

	cartItem, err := s.ownedCartItem(userID, cartItemID)
	if err != nil {
		return err
	}

	product, err := s.productRepo.FindByID(cartItem.ProductID)
	if err != nil {
		logger.Error("Failed to fetch product for size swap", err, map[string]interface{}{
			"cart_item_id": cartItemID,
			"product_id":   cartItem.ProductID,
		})
		return err
	}

	var target *model.ProductVariant
	for i := range product.Variants {
		if product.Variants[i].Size == size {
			target = &product.Variants[i]
			break
		}
	}
	if target == nil {
		logger.Warn("Requested size not available for product", map[string]interface{}{
			"cart_item_id": cartItemID,
			"product_id":   product.ID,
			"size":         size,
		})
		return ErrInvalidVariant
	}

	if target.StockQuantity < cartItem.Quantity {
		if target.StockQuantity < model.MinCartQuantity {
			return ErrInsufficientStock
		}
		cartItem.Quantity = target.StockQuantity
	}

	targetID := target.ID
	cartItem.VariantID = &targetID
	cartItem.Variant = nil
	if err := s.cartRepo.Update(cartItem); err != nil {
		logger.Error("Failed to update cart item size", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	logger.Info("Cart item size updated", map[string]interface{}{
		"cart_item_id": cartItemID,
		"variant_id":   targetID,
		"size":         size,
	})
	return nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, userID, cartItemID uint) error {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})

	if _, err := s.ownedCartItem(userID, cartItemID); err != nil {
		return err
	}

	if err := s.cartRepo.Delete(cartItemID); err != nil {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	s.invalidateCount(ctx, userID)
	logger.Info("Cart item removed", map[string]interface{}{
		"cart_item_id": cartItemID,
	})
	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uint) error {
	logger.Info("Clearing user cart", map[string]interface{}{
		"user_id": userID,
	})

	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	s.invalidateCount(ctx, userID)
	logger.Info("User cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// ownedCartItem loads a cart item and enforces ownership. A foreign item is
// reported as not found rather than forbidden.
func (s *cartService) ownedCartItem(userID, cartItemID uint) (*model.CartItem, error) {
	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found", map[string]interface{}{
				"cart_item_id": cartItemID,
			})
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return nil, err
	}

	if cartItem.UserID != userID {
		logger.Warn("Cart item access denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"owner_id":     cartItem.UserID,
		})
		return nil, ErrCartItemNotFound
	}
	return cartItem, nil
}
