package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/cache"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/cart"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/checkout"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/db/dbtest"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Dispatch(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type invalidations struct{ n int }

func (i *invalidations) Invalidate(context.Context) { i.n++ }

type fixture struct {
	svc      *checkout.Service
	carts    *cart.Service
	db       *gorm.DB
	events   *recorder
	catalog  *invalidations
	products []models.Product
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, "pedidos")
	products := []models.Product{
		{Name: "Anel Solitário", Slug: "anel-solitario", PriceCents: 120000, Stock: 2, Active: true},
		{Name: "Colar Pérola", Slug: "colar-perola", PriceCents: 45000, Stock: 5, Active: true},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatal(err)
		}
	}
	mem := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = mem.Close() })

	carts := cart.NewService(db, zerolog.Nop())
	store := orders.NewStore(db, []string{"orders", "pedidos"}, zerolog.Nop())
	rec := &recorder{}
	inv := &invalidations{}
	return &fixture{
		svc:      checkout.NewService(carts, store, mem, inv, rec, zerolog.Nop()),
		carts:    carts,
		db:       db,
		events:   rec,
		catalog:  inv,
		products: products,
	}
}

func customer() checkout.Customer {
	return checkout.Customer{
		Name:    "  Maria Souza ",
		Email:   "Maria@Example.com",
		Phone:   "(27) 99999-1234",
		Address: "Rua das Flores, 10 - Vitória/ES",
	}
}

func stockOf(c *qt.C, db *gorm.DB, id uint) int {
	var p models.Product
	c.Assert(db.First(&p, id).Error, qt.IsNil)
	return p.Stock
}

func TestCheckoutPlacesOrder(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	id := cart.NewID()
	_, err := f.carts.Add(ctx, id, f.products[0].ID, 2)
	c.Assert(err, qt.IsNil)
	_, err = f.carts.Add(ctx, id, f.products[1].ID, 1)
	c.Assert(err, qt.IsNil)

	order, err := f.svc.Checkout(ctx, id, customer(), "")
	c.Assert(err, qt.IsNil)
	c.Assert(order.Table, qt.Equals, "orders")
	c.Assert(order.Status, qt.Equals, models.StatusPending)
	c.Assert(order.CustomerName, qt.Equals, "Maria Souza")
	c.Assert(order.CustomerEmail, qt.Equals, "maria@example.com")
	c.Assert(order.TotalCents, qt.Equals, int64(2*120000+45000))
	c.Assert(order.ItemCount, qt.Equals, 3)
	c.Assert(order.Items, qt.HasLen, 2)

	c.Assert(stockOf(c, f.db, f.products[0].ID), qt.Equals, 0)
	c.Assert(stockOf(c, f.db, f.products[1].ID), qt.Equals, 4)
	c.Assert(f.catalog.n, qt.Equals, 1)

	left, err := f.carts.Get(ctx, id)
	c.Assert(err, qt.IsNil)
	c.Assert(left.Empty(), qt.IsTrue)

	c.Assert(f.events.events, qt.HasLen, 1)
	c.Assert(f.events.events[0].Type, qt.Equals, notify.EventOrderCreated)
	c.Assert(f.events.events[0].ID, qt.Equals, order.Number)
}

func TestCheckoutValidatesCustomer(t *testing.T) {
	c := qt.New(t)
	f := setup(t)
	id := cart.NewID()

	tests := []struct {
		name  string
		edit  func(*checkout.Customer)
		field string
	}{
		{"name", func(cu *checkout.Customer) { cu.Name = " " }, "name"},
		{"email", func(cu *checkout.Customer) { cu.Email = "maria@" }, "email"},
		{"phone", func(cu *checkout.Customer) { cu.Phone = "1234" }, "phone"},
		{"address", func(cu *checkout.Customer) { cu.Address = "" }, "address"},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			cu := customer()
			tt.edit(&cu)
			_, err := f.svc.Checkout(context.Background(), id, cu, "")
			var verr *validate.ValidationError
			c.Assert(errors.As(err, &verr), qt.IsTrue)
			c.Assert(verr.Field, qt.Equals, tt.field)
		})
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	c := qt.New(t)
	f := setup(t)
	_, err := f.svc.Checkout(context.Background(), cart.NewID(), customer(), "")
	c.Assert(err, qt.Equals, checkout.ErrEmptyCart)

	_, err = f.svc.Checkout(context.Background(), "nope", customer(), "")
	c.Assert(err, qt.Equals, cart.ErrInvalidCartID)
}

func TestCheckoutOutOfStockLeavesNoRows(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	id := cart.NewID()
	_, err := f.carts.Add(ctx, id, f.products[1].ID, 1)
	c.Assert(err, qt.IsNil)
	_, err = f.carts.Add(ctx, id, f.products[0].ID, 2)
	c.Assert(err, qt.IsNil)
	// someone else bought one ring in the meantime
	c.Assert(f.db.Model(&models.Product{}).Where("id = ?", f.products[0].ID).Update("stock", 1).Error, qt.IsNil)

	_, err = f.svc.Checkout(ctx, id, customer(), "")
	c.Assert(errors.Is(err, checkout.ErrOutOfStock), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, ".*Anel Solitário")

	// the necklace decrement was rolled back with the failed attempt
	c.Assert(stockOf(c, f.db, f.products[1].ID), qt.Equals, 5)
	var n int64
	c.Assert(f.db.Table("orders").Count(&n).Error, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))
	c.Assert(f.db.Table("pedidos").Count(&n).Error, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))

	kept, err := f.carts.Get(ctx, id)
	c.Assert(err, qt.IsNil)
	c.Assert(kept.Items, qt.HasLen, 2)
	c.Assert(f.events.events, qt.HasLen, 0)
	c.Assert(f.catalog.n, qt.Equals, 0)
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	id := cart.NewID()

	// a failed attempt releases the key
	_, err := f.svc.Checkout(ctx, id, customer(), "key-1")
	c.Assert(err, qt.Equals, checkout.ErrEmptyCart)

	_, err = f.carts.Add(ctx, id, f.products[1].ID, 1)
	c.Assert(err, qt.IsNil)
	_, err = f.svc.Checkout(ctx, id, customer(), "key-1")
	c.Assert(err, qt.IsNil)

	_, err = f.carts.Add(ctx, id, f.products[1].ID, 1)
	c.Assert(err, qt.IsNil)
	_, err = f.svc.Checkout(ctx, id, customer(), "key-1")
	c.Assert(err, qt.Equals, checkout.ErrDuplicateCheckout)
	c.Assert(stockOf(c, f.db, f.products[1].ID), qt.Equals, 4)
}
