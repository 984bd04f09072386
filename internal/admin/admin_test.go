package admin_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/admin"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/db/dbtest"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/storage"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

type invalidations struct{ n int }

func (i *invalidations) Invalidate(context.Context) { i.n++ }

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Dispatch(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type fixture struct {
	svc    *admin.Service
	db     *gorm.DB
	dir    string
	cache  *invalidations
	events *recorder
	orders *orders.Store
	actor  admin.Actor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, "pedidos")
	dir := t.TempDir()
	f := &fixture{
		db:     db,
		dir:    dir,
		cache:  &invalidations{},
		events: &recorder{},
		orders: orders.NewStore(db, []string{"orders", "pedidos"}, zerolog.Nop()),
		actor:  admin.Actor{ID: 7, Email: "gerente@ravic.com.br"},
	}
	f.svc = admin.NewService(admin.Options{
		DB:            db,
		Store:         storage.NewLocal(dir, "/uploads"),
		Orders:        f.orders,
		Catalog:       f.cache,
		Dispatcher:    f.events,
		MaxUploadSize: 1 << 20,
		Logger:        zerolog.Nop(),
	})
	return f
}

func ptr[T any](v T) *T { return &v }

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["image"][0]
}

func exists(dir, key string) bool {
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	return err == nil
}

func TestCreateProduct(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)

	p, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{
		Name:       ptr("Anel Solitário Ouro 18k"),
		PriceCents: ptr(int64(189900)),
		Stock:      ptr(3),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(p.Slug, qt.Equals, "anel-solitario-ouro-18k")
	c.Assert(p.Active, qt.IsTrue)
	c.Assert(p.Stock, qt.Equals, 3)
	c.Assert(f.cache.n, qt.Equals, 1)

	var logs []models.AuditLog
	c.Assert(f.db.Find(&logs).Error, qt.IsNil)
	c.Assert(logs, qt.HasLen, 1)
	c.Assert(logs[0].Action, qt.Equals, admin.ActionCreate)
	c.Assert(logs[0].Entity, qt.Equals, "product")
	c.Assert(logs[0].AdminEmail, qt.Equals, "gerente@ravic.com.br")

	_, err = f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{Name: ptr("Anel Solitario OURO 18K"), PriceCents: ptr(int64(100))})
	c.Assert(err, qt.Equals, admin.ErrSlugTaken)

	hidden, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{Name: ptr("Rascunho"), PriceCents: ptr(int64(100)), Active: ptr(false)})
	c.Assert(err, qt.IsNil)
	c.Assert(hidden.Active, qt.IsFalse)
}

func TestCreateProductValidation(t *testing.T) {
	c := qt.New(t)
	f := setup(t)

	tests := []struct {
		name  string
		in    admin.ProductInput
		field string
	}{
		{"no name", admin.ProductInput{PriceCents: ptr(int64(100))}, "name"},
		{"no price", admin.ProductInput{Name: ptr("Brinco")}, "price_cents"},
		{"promo above price", admin.ProductInput{Name: ptr("Brinco"), PriceCents: ptr(int64(100)), PromoPriceCents: ptr(int64(150))}, "promo_price_cents"},
		{"negative stock", admin.ProductInput{Name: ptr("Brinco"), PriceCents: ptr(int64(100)), Stock: ptr(-1)}, "stock"},
		{"bad slug", admin.ProductInput{Name: ptr("!!!"), PriceCents: ptr(int64(100))}, "slug"},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			_, err := f.svc.CreateProduct(context.Background(), f.actor, tt.in)
			var verr *validate.ValidationError
			c.Assert(errors.As(err, &verr), qt.IsTrue, qt.Commentf("%v", err))
			c.Assert(verr.Field, qt.Equals, tt.field)
		})
	}
	c.Assert(f.cache.n, qt.Equals, 0)
}

func TestUpdateProductPartial(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)

	cat, err := f.svc.CreateCategory(ctx, f.actor, admin.GroupInput{Name: ptr("Anéis")})
	c.Assert(err, qt.IsNil)
	p, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{
		Name: ptr("Anel"), PriceCents: ptr(int64(10000)), PromoPriceCents: ptr(int64(8000)),
		CategoryID: ptr(cat.ID), Featured: ptr(true),
	})
	c.Assert(err, qt.IsNil)

	got, err := f.svc.UpdateProduct(ctx, f.actor, p.ID, admin.ProductInput{
		Description:     ptr("Prata 925"),
		PromoPriceCents: ptr(int64(0)),
		Featured:        ptr(false),
		CategoryID:      ptr(uint(0)),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got.Name, qt.Equals, "Anel")
	c.Assert(got.Slug, qt.Equals, "anel")
	c.Assert(got.Description, qt.Equals, "Prata 925")
	c.Assert(got.PromoPriceCents, qt.IsNil)
	c.Assert(got.Featured, qt.IsFalse)
	c.Assert(got.CategoryID, qt.IsNil)
	c.Assert(got.PriceCents, qt.Equals, int64(10000))

	_, err = f.svc.UpdateProduct(ctx, f.actor, p.ID, admin.ProductInput{CategoryID: ptr(uint(999))})
	c.Assert(err, qt.Equals, admin.ErrCategoryNotFound)
	_, err = f.svc.UpdateProduct(ctx, f.actor, 999, admin.ProductInput{})
	c.Assert(errors.Is(err, admin.ErrNotFound), qt.IsTrue)

	// keeping its own slug is not a conflict
	_, err = f.svc.UpdateProduct(ctx, f.actor, p.ID, admin.ProductInput{Slug: ptr("anel")})
	c.Assert(err, qt.IsNil)
}

func TestSetStock(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	p, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{Name: ptr("Pulseira"), PriceCents: ptr(int64(5000))})
	c.Assert(err, qt.IsNil)

	got, err := f.svc.SetStock(ctx, f.actor, p.ID, 12)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Stock, qt.Equals, 12)

	_, err = f.svc.SetStock(ctx, f.actor, p.ID, -1)
	var verr *validate.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)
	_, err = f.svc.SetStock(ctx, f.actor, 404, 1)
	c.Assert(err, qt.Equals, admin.ErrProductNotFound)
}

func TestProductImages(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	p, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{Name: ptr("Colar"), PriceCents: ptr(int64(5000))})
	c.Assert(err, qt.IsNil)

	first, err := f.svc.AddImage(ctx, f.actor, p.ID, fileHeader(t, "a.png", pngBytes), "frente")
	c.Assert(err, qt.IsNil)
	c.Assert(first.Primary, qt.IsTrue)
	c.Assert(first.Position, qt.Equals, 0)
	c.Assert(exists(f.dir, first.StorageKey), qt.IsTrue)

	second, err := f.svc.AddImage(ctx, f.actor, p.ID, fileHeader(t, "b.png", pngBytes), "")
	c.Assert(err, qt.IsNil)
	c.Assert(second.Primary, qt.IsFalse)
	c.Assert(second.Position, qt.Equals, 1)

	_, err = f.svc.AddImage(ctx, f.actor, p.ID, fileHeader(t, "c.txt", []byte("hello")), "")
	c.Assert(err, qt.Not(qt.IsNil))
	_, err = f.svc.AddImage(ctx, f.actor, 999, fileHeader(t, "d.png", pngBytes), "")
	c.Assert(err, qt.Equals, admin.ErrProductNotFound)

	upd, err := f.svc.UpdateImage(ctx, f.actor, p.ID, second.ID, admin.ImageInput{Primary: ptr(true), Alt: ptr("costas")})
	c.Assert(err, qt.IsNil)
	c.Assert(upd.Primary, qt.IsTrue)
	c.Assert(upd.Alt, qt.Equals, "costas")

	imgs, err := f.svc.ReorderImages(ctx, f.actor, p.ID, []uint{second.ID, first.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(imgs[0].ID, qt.Equals, second.ID)
	c.Assert(imgs[0].Primary, qt.IsTrue)
	c.Assert(imgs[1].Primary, qt.IsFalse)

	_, err = f.svc.ReorderImages(ctx, f.actor, p.ID, []uint{second.ID})
	var verr *validate.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)

	c.Assert(f.svc.DeleteImage(ctx, f.actor, p.ID, second.ID), qt.IsNil)
	c.Assert(exists(f.dir, second.StorageKey), qt.IsFalse)
	got, err := f.svc.GetProduct(ctx, p.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Images, qt.HasLen, 1)
	c.Assert(got.Images[0].Primary, qt.IsTrue)

	c.Assert(f.svc.DeleteImage(ctx, f.actor, p.ID, second.ID), qt.Equals, admin.ErrImageNotFound)
}

func TestDeleteProduct(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	p, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{Name: ptr("Brinco"), PriceCents: ptr(int64(5000)), Stock: ptr(2)})
	c.Assert(err, qt.IsNil)
	img, err := f.svc.AddImage(ctx, f.actor, p.ID, fileHeader(t, "a.png", pngBytes), "")
	c.Assert(err, qt.IsNil)
	c.Assert(f.db.Create(&models.CartItem{CartID: "cart", ProductID: p.ID, Quantity: 1}).Error, qt.IsNil)

	c.Assert(f.svc.DeleteProduct(ctx, f.actor, p.ID), qt.IsNil)
	c.Assert(exists(f.dir, img.StorageKey), qt.IsFalse)

	var n int64
	c.Assert(f.db.Model(&models.ProductImage{}).Count(&n).Error, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))
	c.Assert(f.db.Model(&models.CartItem{}).Count(&n).Error, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))

	c.Assert(f.svc.DeleteProduct(ctx, f.actor, p.ID), qt.Equals, admin.ErrProductNotFound)
}

func TestCategoriesAndCollections(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)

	cat, err := f.svc.CreateCategory(ctx, f.actor, admin.GroupInput{Name: ptr("Colares e Correntes")})
	c.Assert(err, qt.IsNil)
	c.Assert(cat.Slug, qt.Equals, "colares-e-correntes")
	_, err = f.svc.CreateCategory(ctx, f.actor, admin.GroupInput{Name: ptr("Outra"), Slug: ptr("colares-e-correntes")})
	c.Assert(err, qt.Equals, admin.ErrSlugTaken)

	cat, err = f.svc.UpdateCategory(ctx, f.actor, cat.ID, admin.GroupInput{Active: ptr(false), Featured: ptr(true)})
	c.Assert(err, qt.IsNil)
	c.Assert(cat.Active, qt.IsFalse)

	col, err := f.svc.CreateCollection(ctx, f.actor, admin.GroupInput{Name: ptr("Verão 2026"), Featured: ptr(true)})
	c.Assert(err, qt.IsNil)
	c.Assert(col.Featured, qt.IsTrue)
	c.Assert(col.Slug, qt.Equals, "verao-2026")

	p, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{
		Name: ptr("Corrente"), PriceCents: ptr(int64(1000)), CategoryID: ptr(cat.ID), CollectionID: ptr(col.ID),
	})
	c.Assert(err, qt.IsNil)

	c.Assert(f.svc.DeleteCategory(ctx, f.actor, cat.ID), qt.IsNil)
	c.Assert(f.svc.DeleteCollection(ctx, f.actor, col.ID), qt.IsNil)
	got, err := f.svc.GetProduct(ctx, p.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.CategoryID, qt.IsNil)
	c.Assert(got.CollectionID, qt.IsNil)

	cats, err := f.svc.ListCategories(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(cats, qt.HasLen, 0)
	c.Assert(f.svc.DeleteCollection(ctx, f.actor, col.ID), qt.Equals, admin.ErrCollectionNotFound)
}

func TestCarousel(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.CreateCarouselItem(ctx, f.actor, admin.CarouselInput{Title: ptr("Sem imagem")})
	var verr *validate.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)

	a, err := f.svc.CreateCarouselItem(ctx, f.actor, admin.CarouselInput{Title: ptr("Dia das Mães"), ImageURL: ptr("/uploads/a.png")})
	c.Assert(err, qt.IsNil)
	b, err := f.svc.CreateCarouselItem(ctx, f.actor, admin.CarouselInput{Title: ptr("Natal"), ImageURL: ptr("/uploads/b.png")})
	c.Assert(err, qt.IsNil)
	c.Assert(a.Position, qt.Equals, 0)
	c.Assert(b.Position, qt.Equals, 1)

	items, err := f.svc.ReorderCarousel(ctx, f.actor, []uint{b.ID, a.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(items[0].ID, qt.Equals, b.ID)
	c.Assert(items[1].Position, qt.Equals, 1)

	_, err = f.svc.ReorderCarousel(ctx, f.actor, []uint{a.ID, a.ID})
	c.Assert(errors.As(err, &verr), qt.IsTrue)

	b, err = f.svc.UpdateCarouselItem(ctx, f.actor, b.ID, admin.CarouselInput{Active: ptr(false), LinkURL: ptr("/colecoes/natal")})
	c.Assert(err, qt.IsNil)
	c.Assert(b.Active, qt.IsFalse)
	c.Assert(b.LinkURL, qt.Equals, "/colecoes/natal")

	c.Assert(f.svc.DeleteCarouselItem(ctx, f.actor, a.ID), qt.IsNil)
	c.Assert(f.svc.DeleteCarouselItem(ctx, f.actor, a.ID), qt.Equals, admin.ErrCarouselNotFound)
}

func TestSettings(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.SetSetting(ctx, f.actor, "whatsapp_number", "5527999991234", true)
	c.Assert(err, qt.IsNil)
	_, err = f.svc.SetSetting(ctx, f.actor, "whatsapp_number", "5527888881234", false)
	c.Assert(err, qt.IsNil)

	st, err := f.svc.GetSetting(ctx, "whatsapp_number")
	c.Assert(err, qt.IsNil)
	c.Assert(st.Value, qt.Equals, "5527888881234")
	c.Assert(st.Public, qt.IsFalse)

	_, err = f.svc.SetSetting(ctx, f.actor, "Bad Key!", "x", false)
	var verr *validate.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)

	all, err := f.svc.ListSettings(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 1)

	c.Assert(f.svc.DeleteSetting(ctx, f.actor, "whatsapp_number"), qt.IsNil)
	c.Assert(f.svc.DeleteSetting(ctx, f.actor, "whatsapp_number"), qt.Equals, admin.ErrSettingNotFound)
	_, err = f.svc.GetSetting(ctx, "whatsapp_number")
	c.Assert(err, qt.Equals, admin.ErrSettingNotFound)
}

func seedOrder(c *qt.C, f *fixture, number string, status models.OrderStatus, total int64) {
	o := &models.Order{Number: number, CustomerName: "Ana", CustomerEmail: "ana@example.com", Status: status, TotalCents: total, ItemCount: 1}
	items := []models.OrderItem{{ProductID: 1, ProductName: "Anel", UnitPriceCents: total, Quantity: 1, SubtotalCents: total}}
	_, err := f.orders.Create(context.Background(), o, items, nil)
	c.Assert(err, qt.IsNil)
}

func TestUpdateOrderStatus(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	seedOrder(c, f, "RJ-20261015-AAAAAA", models.StatusPending, 5000)

	o, err := f.svc.UpdateOrderStatus(ctx, f.actor, "RJ-20261015-AAAAAA", models.StatusShipped)
	c.Assert(err, qt.IsNil)
	c.Assert(o.Status, qt.Equals, models.StatusShipped)
	c.Assert(f.events.events, qt.HasLen, 1)
	c.Assert(f.events.events[0].Type, qt.Equals, notify.EventOrderStatus)

	// same status again: no event
	_, err = f.svc.UpdateOrderStatus(ctx, f.actor, "RJ-20261015-AAAAAA", models.StatusShipped)
	c.Assert(err, qt.IsNil)
	c.Assert(f.events.events, qt.HasLen, 1)

	_, err = f.svc.UpdateOrderStatus(ctx, f.actor, "RJ-20261015-AAAAAA", "perdido")
	c.Assert(err, qt.Equals, orders.ErrInvalidStatus)
	_, err = f.svc.UpdateOrderStatus(ctx, f.actor, "RJ-00000000-000000", models.StatusShipped)
	c.Assert(err, qt.Equals, orders.ErrOrderNotFound)

	logs, err := f.svc.ListAuditLogs(ctx, admin.AuditFilter{Entity: "order"})
	c.Assert(err, qt.IsNil)
	c.Assert(logs.Total, qt.Equals, int64(2))
}

func TestDashboard(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)

	for i, stock := range []int{0, 3, 6, 20} {
		_, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{
			Name: ptr("Produto " + string(rune('A'+i))), PriceCents: ptr(int64(1000)), Stock: ptr(stock),
		})
		c.Assert(err, qt.IsNil)
	}
	_, err := f.svc.CreateProduct(ctx, f.actor, admin.ProductInput{Name: ptr("Inativo"), PriceCents: ptr(int64(1000)), Active: ptr(false)})
	c.Assert(err, qt.IsNil)
	_, err = f.svc.CreateCategory(ctx, f.actor, admin.GroupInput{Name: ptr("Anéis")})
	c.Assert(err, qt.IsNil)

	seedOrder(c, f, "RJ-1", models.StatusPending, 1000)
	seedOrder(c, f, "RJ-2", models.StatusDelivered, 2500)
	seedOrder(c, f, "RJ-3", models.StatusCancelled, 9999)

	d, err := f.svc.Dashboard(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(d.Products, qt.Equals, int64(5))
	c.Assert(d.ActiveProducts, qt.Equals, int64(4))
	c.Assert(d.LowStockThreshold, qt.Equals, admin.DefaultLowStockThreshold)
	c.Assert(d.LowStock, qt.Equals, int64(2))
	c.Assert(d.Categories, qt.Equals, int64(1))
	c.Assert(d.Orders, qt.Equals, int64(3))
	c.Assert(d.PendingOrders, qt.Equals, int64(1))
	c.Assert(d.RevenueCents, qt.Equals, int64(3500))
	c.Assert(d.RecentOrders, qt.HasLen, 3)

	_, err = f.svc.SetSetting(ctx, f.actor, admin.LowStockSetting, "10", false)
	c.Assert(err, qt.IsNil)
	d, err = f.svc.Dashboard(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(d.LowStock, qt.Equals, int64(3))
}

func TestAuditLogPaging(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)
	for _, name := range []string{"Um", "Dois", "Tres"} {
		_, err := f.svc.CreateCategory(ctx, f.actor, admin.GroupInput{Name: ptr(name)})
		c.Assert(err, qt.IsNil)
	}
	page, err := f.svc.ListAuditLogs(ctx, admin.AuditFilter{Params: pagination.Params{Page: 2, PageSize: 2}})
	c.Assert(err, qt.IsNil)
	c.Assert(page.Total, qt.Equals, int64(3))
	c.Assert(page.TotalPages, qt.Equals, int64(2))
	c.Assert(page.Items, qt.HasLen, 1)

	page, err = f.svc.ListAuditLogs(ctx, admin.AuditFilter{AdminID: 99})
	c.Assert(err, qt.IsNil)
	c.Assert(page.Total, qt.Equals, int64(0))
}

func TestUpload(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := setup(t)

	obj, err := f.svc.Upload(ctx, f.actor, fileHeader(t, "banner.png", pngBytes), "carousel")
	c.Assert(err, qt.IsNil)
	c.Assert(exists(f.dir, obj.Key), qt.IsTrue)
	c.Assert(f.svc.DeleteUpload(ctx, f.actor, obj.Key), qt.IsNil)
	c.Assert(exists(f.dir, obj.Key), qt.IsFalse)
	c.Assert(f.svc.DeleteUpload(ctx, f.actor, "../etc/passwd"), qt.Not(qt.IsNil))
}
