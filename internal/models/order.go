package models

// OrderStatus: lifecycle of an order, stored in Portuguese as the
// storefront shows it.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pendente"
	StatusConfirmed OrderStatus = "confirmado"
	StatusShipped   OrderStatus = "enviado"
	StatusDelivered OrderStatus = "entregue"
	StatusCancelled OrderStatus = "cancelado"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order: table orders; legacy rows live in pedidos with the same columns.
// Items are stored separately because the parent table varies.
type Order struct {
	Base
	Number          string      `gorm:"uniqueIndex;size:32;not null" json:"number"`
	CartID          string      `gorm:"index;size:36" json:"cart_id"`
	CustomerName    string      `gorm:"not null" json:"customer_name"`
	CustomerEmail   string      `gorm:"index;not null" json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `gorm:"type:text" json:"shipping_address"`
	Notes           string      `gorm:"type:text" json:"notes"`
	Status          OrderStatus `gorm:"type:varchar(16);index;not null;default:'pendente'" json:"status"`
	TotalCents      int64       `gorm:"not null" json:"total_cents"`
	ItemCount       int         `gorm:"not null" json:"item_count"`

	Table string      `gorm:"-" json:"table,omitempty"`
	Items []OrderItem `gorm:"-" json:"items,omitempty"`
}

// OrderItem: table order_items
type OrderItem struct {
	Base
	OrderTable     string `gorm:"size:32;index:idx_order_items_parent;not null" json:"order_table"`
	OrderID        uint   `gorm:"index:idx_order_items_parent;not null" json:"order_id"`
	ProductID      uint   `gorm:"index;not null" json:"product_id"`
	ProductName    string `gorm:"not null" json:"product_name"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents"`
	Quantity       int    `gorm:"not null" json:"quantity"`
	SubtotalCents  int64  `gorm:"not null" json:"subtotal_cents"`
}

// CartItem: table shopping_cart_items, keyed by the anonymous cart UUID
type CartItem struct {
	Base
	CartID    string   `gorm:"size:36;not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `gorm:"not null;check:quantity > 0" json:"quantity"`
}

func (CartItem) TableName() string { return "shopping_cart_items" }
