package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string
type CheckoutFlow string

const (
	OrderStatusPending   OrderStatus = "pending"   // order accepted, payment outstanding
	OrderStatusConfirmed OrderStatus = "confirmed" // payment settled or COD accepted
	OrderStatusShipped   OrderStatus = "shipped"   // handed to courier
	OrderStatusDelivered OrderStatus = "delivered" // customer received the item
	OrderStatusCancelled OrderStatus = "cancelled" // cancelled before shipping

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodPrepaid PaymentMethod = "prepaid"

	FlowCart     CheckoutFlow = "cart"
	FlowQuickBuy CheckoutFlow = "quick_buy"
)

type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrderNumber    string         `gorm:"type:varchar(40);uniqueIndex" json:"order_number"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Flow           CheckoutFlow   `gorm:"type:varchar(20);default:'cart'" json:"flow"`
	Subtotal       float64        `gorm:"not null" json:"subtotal"`
	Tax            float64        `gorm:"not null" json:"tax"`
	DeliveryCharge float64        `gorm:"not null" json:"delivery_charge"`
	TotalAmount    float64        `gorm:"not null" json:"total_amount"` // subtotal + tax + delivery
	Status         OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus  PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentTxnID   string         `gorm:"type:varchar(50);index" json:"payment_txn_id,omitempty"` // merchant transaction id
	PaidAt         *time.Time     `json:"paid_at,omitempty"`
	AddressID      uint           `gorm:"not null" json:"address_id"`
	ShippingPin    string         `gorm:"size:10;not null" json:"shipping_pin"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Address    Address     `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
	Events     []OrderEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	OrderID         uint           `gorm:"not null;index" json:"order_id"`
	ProductID       uint           `gorm:"not null;index" json:"product_id"`
	VariantID       uint           `gorm:"not null;index" json:"variant_id"`
	Quantity        int            `gorm:"not null" json:"quantity"`
	PriceAtPurchase float64        `gorm:"not null" json:"price_at_purchase"` // unit price snapshot
	GSTRate         float64        `gorm:"not null" json:"gst_rate"`
	SizeSnapshot    string         `gorm:"size:20" json:"size_snapshot"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order          `gorm:"foreignKey:OrderID" json:"-"`
	Product Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderEvent is one entry of an order's status timeline. The server is the
// source of truth for the timeline; events are append-only.
type OrderEvent struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note      string      `gorm:"type:text" json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}

func (OrderEvent) TableName() string {
	return "order_events"
}
