package admin

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

// ProductInput carries create and partial update fields; nil means
// "leave as is". A zero PromoPriceCents, CategoryID or CollectionID clears
// the value.
type ProductInput struct {
	Name            *string `json:"name"`
	Slug            *string `json:"slug"`
	SKU             *string `json:"sku"`
	Description     *string `json:"description"`
	Material        *string `json:"material"`
	PriceCents      *int64  `json:"price_cents" binding:"omitempty,gt=0"`
	PromoPriceCents *int64  `json:"promo_price_cents" binding:"omitempty,gte=0"`
	Stock           *int    `json:"stock" binding:"omitempty,gte=0"`
	CategoryID      *uint   `json:"category_id"`
	CollectionID    *uint   `json:"collection_id"`
	Featured        *bool   `json:"featured"`
	Active          *bool   `json:"active"`
}

// ProductQuery filters the back-office listing, which includes inactive
// products.
type ProductQuery struct {
	Query      string
	CategoryID uint
	Active     *bool
	pagination.Params
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("position asc, id asc") }).
		Preload("Category").Preload("Collection")
}

func (s *Service) ListProducts(ctx context.Context, f ProductQuery) (pagination.Page[models.Product], error) {
	f.Params = f.Params.Normalize()
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(slug) LIKE ?", like, like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Page[models.Product]{}, err
	}
	var items []models.Product
	if err := withRelations(q).Order("created_at desc, id desc").Offset(f.Offset()).Limit(f.PageSize).Find(&items).Error; err != nil {
		return pagination.Page[models.Product]{}, err
	}
	return pagination.NewPage(items, total, f.Params), nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return first[models.Product](withRelations(s.db.WithContext(ctx)), id, ErrProductNotFound)
}

// resolveSlug derives the slug from name when none is given and makes sure
// no other row of model uses it.
func resolveSlug(tx *gorm.DB, model any, slug, name string, excludeID uint) (string, error) {
	slug = validate.Slugify(slug)
	if slug == "" {
		slug = validate.Slugify(name)
	}
	if slug == "" {
		return "", &validate.ValidationError{Field: "slug", Message: "Slug inválido"}
	}
	q := tx.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "", ErrSlugTaken
	}
	return slug, nil
}

func checkRef(tx *gorm.DB, model any, id *uint, notFound error) (*uint, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	var n int64
	if err := tx.Model(model).Where("id = ?", *id).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, notFound
	}
	v := *id
	return &v, nil
}

func (s *Service) applyProduct(tx *gorm.DB, p *models.Product, in ProductInput) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if err := validate.Required("name", p.Name, "Nome do produto é obrigatório"); err != nil {
		return err
	}
	if in.Slug != nil || p.Slug == "" {
		var raw string
		if in.Slug != nil {
			raw = *in.Slug
		}
		slug, err := resolveSlug(tx, &models.Product{}, raw, p.Name, p.ID)
		if err != nil {
			return err
		}
		p.Slug = slug
	}
	if in.SKU != nil {
		p.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Material != nil {
		p.Material = strings.TrimSpace(*in.Material)
	}
	if in.PriceCents != nil {
		p.PriceCents = *in.PriceCents
	}
	if p.PriceCents <= 0 {
		return &validate.ValidationError{Field: "price_cents", Message: "Preço deve ser maior que zero"}
	}
	if in.PromoPriceCents != nil {
		switch promo := *in.PromoPriceCents; {
		case promo == 0:
			p.PromoPriceCents = nil
		case promo < 0 || promo >= p.PriceCents:
			return &validate.ValidationError{Field: "promo_price_cents", Message: "Preço promocional deve ser menor que o preço"}
		default:
			p.PromoPriceCents = &promo
		}
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return &validate.ValidationError{Field: "stock", Message: "Estoque não pode ser negativo"}
		}
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		id, err := checkRef(tx, &models.Category{}, in.CategoryID, ErrCategoryNotFound)
		if err != nil {
			return err
		}
		p.CategoryID, p.Category = id, nil
	}
	if in.CollectionID != nil {
		id, err := checkRef(tx, &models.Collection{}, in.CollectionID, ErrCollectionNotFound)
		if err != nil {
			return err
		}
		p.CollectionID, p.Collection = id, nil
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	return nil
}

// CreateProduct adds a product; it is active unless Active says otherwise.
func (s *Service) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (*models.Product, error) {
	p := &models.Product{Active: true}
	err := s.mutate(ctx, actor, ActionCreate, "product", func(tx *gorm.DB) (any, any, error) {
		if err := s.applyProduct(tx, p, in); err != nil {
			return nil, nil, err
		}
		if err := tx.Create(p).Error; err != nil {
			return nil, nil, err
		}
		return p.ID, in, nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *Service) UpdateProduct(ctx context.Context, actor Actor, id uint, in ProductInput) (*models.Product, error) {
	err := s.mutate(ctx, actor, ActionUpdate, "product", func(tx *gorm.DB) (any, any, error) {
		p, err := first[models.Product](tx, id, ErrProductNotFound)
		if err != nil {
			return nil, nil, err
		}
		if err := s.applyProduct(tx, p, in); err != nil {
			return nil, nil, err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return nil, nil, err
		}
		return id, in, nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// SetStock overwrites the stock level of a product.
func (s *Service) SetStock(ctx context.Context, actor Actor, id uint, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, &validate.ValidationError{Field: "stock", Message: "Estoque não pode ser negativo"}
	}
	err := s.mutate(ctx, actor, ActionUpdate, "product", func(tx *gorm.DB) (any, any, error) {
		res := tx.Model(&models.Product{}).Where("id = ?", id).Update("stock", stock)
		if res.Error != nil {
			return nil, nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil, ErrProductNotFound
		}
		return id, map[string]int{"stock": stock}, nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product with its images and any cart lines
// pointing at it. Order items keep their snapshot.
func (s *Service) DeleteProduct(ctx context.Context, actor Actor, id uint) error {
	var keys []string
	err := s.mutate(ctx, actor, ActionDelete, "product", func(tx *gorm.DB) (any, any, error) {
		p, err := first[models.Product](tx, id, ErrProductNotFound)
		if err != nil {
			return nil, nil, err
		}
		var images []models.ProductImage
		if err := tx.Where("product_id = ?", id).Find(&images).Error; err != nil {
			return nil, nil, err
		}
		for _, img := range images {
			keys = append(keys, img.StorageKey)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return nil, nil, err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return nil, nil, err
		}
		if err := tx.Delete(p).Error; err != nil {
			return nil, nil, err
		}
		return id, map[string]string{"name": p.Name, "slug": p.Slug}, nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		s.removeObject(ctx, k)
	}
	return nil
}
