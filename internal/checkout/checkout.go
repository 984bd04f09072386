// Package checkout turns a cart into an order: it reserves stock, writes the
// order through the orders store and announces it without waiting.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/cache"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/cart"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

const idempotencyTTL = 24 * time.Hour

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOutOfStock        = errors.New("insufficient stock")
	ErrDuplicateCheckout = errors.New("checkout already submitted")
)

// StockError names the product that ran out; it matches ErrOutOfStock.
type StockError struct {
	Product string
}

func (e *StockError) Error() string { return ErrOutOfStock.Error() + ": " + e.Product }

func (e *StockError) Is(target error) bool { return target == ErrOutOfStock }

// Customer is the contact and delivery data typed at checkout.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (c *Customer) normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.Notes = strings.TrimSpace(c.Notes)
}

func (c *Customer) Validate() error {
	return validate.First(
		validate.Required("name", c.Name, "Nome é obrigatório"),
		validate.Email("email", c.Email),
		validate.Phone("phone", c.Phone),
		validate.Required("address", c.Address, "Endereço de entrega é obrigatório"),
	)
}

// Dispatcher is satisfied by *notify.Dispatcher.
type Dispatcher interface {
	Dispatch(ev notify.Event)
}

// Invalidator drops cached storefront data; *catalog.Service satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	carts      *cart.Service
	orders     *orders.Store
	cache      cache.Cache
	catalog    Invalidator
	dispatcher Dispatcher
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(carts *cart.Service, store *orders.Store, c cache.Cache, catalog Invalidator, d Dispatcher, logger zerolog.Logger) *Service {
	return &Service{carts: carts, orders: store, cache: c, catalog: catalog, dispatcher: d, logger: logger, now: time.Now}
}

// Checkout places the order for cartID. A non-empty idempotencyKey makes a
// resubmission within 24h fail with ErrDuplicateCheckout instead of
// creating a second order.
func (s *Service) Checkout(ctx context.Context, cartID string, customer Customer, idempotencyKey string) (*models.Order, error) {
	customer.normalize()
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if !cart.ValidID(cartID) {
		return nil, cart.ErrInvalidCartID
	}

	if idempotencyKey != "" {
		key := "checkout:idempotency:" + idempotencyKey
		ok, err := s.cache.SetNX(ctx, key, idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateCheckout
		}
		order, err := s.place(ctx, cartID, customer)
		if err != nil {
			// let the customer retry after a failure
			if delErr := s.cache.Delete(ctx, key); delErr != nil {
				s.logger.Warn().Err(delErr).Str("key", key).Msg("could not release idempotency key")
			}
			return nil, err
		}
		return order, nil
	}
	return s.place(ctx, cartID, customer)
}

func (s *Service) place(ctx context.Context, cartID string, customer Customer) (*models.Order, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		Number:          orders.NewNumber(s.now()),
		CartID:          cartID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		ShippingAddress: customer.Address,
		Notes:           customer.Notes,
		Status:          models.StatusPending,
		TotalCents:      c.TotalCents,
		ItemCount:       c.ItemCount,
	}
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, models.OrderItem{
			ProductID:      line.ProductID,
			ProductName:    line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			SubtotalCents:  line.SubtotalCents,
		})
	}

	table, err := s.orders.Create(ctx, order, items, func(tx *gorm.DB) error {
		return reserveStock(tx, c.Items)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("number", order.Number).Str("table", table).
		Int64("total_cents", order.TotalCents).Int("items", order.ItemCount).Msg("order placed")

	// cached listings still carry the old stock
	s.catalog.Invalidate(ctx)

	if err := s.carts.Clear(ctx, cartID); err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID).Msg("could not clear cart after checkout")
	}
	s.dispatcher.Dispatch(notify.NewEvent(notify.EventOrderCreated, order.Number, order))
	return order, nil
}

// reserveStock decrements stock only where enough is left, so concurrent
// checkouts cannot drive it negative.
func reserveStock(tx *gorm.DB, lines []cart.Line) error {
	for _, line := range lines {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND active = ? AND stock >= ?", line.ProductID, true, line.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &StockError{Product: line.Name}
		}
	}
	return nil
}
