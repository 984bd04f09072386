// Package cart keeps anonymous shopping carts in shopping_cart_items, keyed
// by a UUID the browser holds on to.
package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
)

var (
	ErrInvalidCartID   = errors.New("invalid cart id")
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrItemNotFound    = errors.New("item not in cart")
)

// NewID returns a fresh cart identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a canonical UUID.
func ValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

// Line is one product in the cart view.
type Line struct {
	ProductID      uint   `json:"product_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	ImageURL       string `json:"image_url"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	Stock          int    `json:"stock"`
}

type Cart struct {
	ID         string `json:"cart_id"`
	Items      []Line `json:"items"`
	ItemCount  int    `json:"item_count"`
	TotalCents int64  `json:"total_cents"`
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

func loadSellable(tx *gorm.DB, productID uint) (*models.Product, error) {
	var p models.Product
	if err := tx.Where("id = ? AND active = ?", productID, true).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Stock <= 0 {
		return nil, ErrOutOfStock
	}
	return &p, nil
}

// Add puts qty units of a product in the cart, merging with an existing
// line. The line never exceeds the available stock.
func (s *Service) Add(ctx context.Context, cartID string, productID uint, qty int) (*Cart, error) {
	if !ValidID(cartID) {
		return nil, ErrInvalidCartID
	}
	if qty <= 0 {
		qty = 1
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadSellable(tx, productID)
		if err != nil {
			return err
		}
		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{CartID: cartID, ProductID: productID, Quantity: min(qty, p.Stock)}
			return tx.Create(&item).Error
		case err != nil:
			return err
		}
		item.Quantity = min(item.Quantity+qty, p.Stock)
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("cart_id", cartID).Uint("product_id", productID).Int("qty", qty).Msg("cart add")
	return s.Get(ctx, cartID)
}

// SetQuantity replaces the quantity of a line; qty <= 0 removes it.
func (s *Service) SetQuantity(ctx context.Context, cartID string, productID uint, qty int) (*Cart, error) {
	if !ValidID(cartID) {
		return nil, ErrInvalidCartID
	}
	if qty <= 0 {
		return s.Remove(ctx, cartID, productID)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		p, err := loadSellable(tx, productID)
		if err != nil {
			return err
		}
		item.Quantity = min(qty, p.Stock)
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, cartID)
}

func (s *Service) Remove(ctx context.Context, cartID string, productID uint) (*Cart, error) {
	if !ValidID(cartID) {
		return nil, ErrInvalidCartID
	}
	res := s.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	return s.Get(ctx, cartID)
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	if !ValidID(cartID) {
		return ErrInvalidCartID
	}
	return s.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// Get builds the cart view. Lines whose product is gone or inactive are
// left out.
func (s *Service) Get(ctx context.Context, cartID string) (*Cart, error) {
	if !ValidID(cartID) {
		return nil, ErrInvalidCartID
	}
	var items []models.CartItem
	err := s.db.WithContext(ctx).Where("cart_id = ?", cartID).Order("id asc").
		Preload("Product").
		Preload("Product.Images", func(q *gorm.DB) *gorm.DB { return q.Order("position asc, id asc") }).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	c := &Cart{ID: cartID, Items: []Line{}}
	for _, it := range items {
		p := it.Product
		if p == nil || !p.Active {
			continue
		}
		unit := p.EffectivePriceCents()
		line := Line{
			ProductID:      p.ID,
			Name:           p.Name,
			Slug:           p.Slug,
			ImageURL:       p.PrimaryImageURL(),
			UnitPriceCents: unit,
			Quantity:       it.Quantity,
			SubtotalCents:  unit * int64(it.Quantity),
			Stock:          p.Stock,
		}
		c.Items = append(c.Items, line)
		c.ItemCount += line.Quantity
		c.TotalCents += line.SubtotalCents
	}
	return c, nil
}
