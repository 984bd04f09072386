// Package catalog serves the public storefront reads: products,
// categories, collections, the home carousel and public settings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/cache"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
)

// KeyPrefix namespaces every cached catalog entry.
const KeyPrefix = "catalog:"

var ErrProductNotFound = errors.New("product not found")

// ProductFilter holds the storefront listing options.
type ProductFilter struct {
	Category   string
	Collection string
	Query      string
	Featured   *bool
	MinPrice   int64
	MaxPrice   int64
	Sort       string
	pagination.Params
}

func (f ProductFilter) cacheKey() string {
	featured := "any"
	if f.Featured != nil {
		featured = strconv.FormatBool(*f.Featured)
	}
	return fmt.Sprintf("%sproducts:cat=%s:col=%s:q=%s:feat=%s:min=%d:max=%d:sort=%s:p=%d:s=%d",
		KeyPrefix, f.Category, f.Collection, strings.ToLower(f.Query), featured,
		f.MinPrice, f.MaxPrice, f.Sort, f.Page, f.PageSize)
}

type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewService(db *gorm.DB, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{db: db, cache: c, ttl: ttl, logger: logger}
}

// cached loads key from the cache or fills it with load. Cache failures are
// logged and never fail the read.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var v T
	if found, err := s.cache.Get(ctx, key, &v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if found {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}

// Invalidate drops every cached catalog entry.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, KeyPrefix); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position asc, id asc")
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter) (pagination.Page[models.Product], error) {
	f.Params = f.Params.Normalize()
	return cached(ctx, s, f.cacheKey(), func() (pagination.Page[models.Product], error) {
		return s.listProducts(ctx, f)
	})
}

func (s *Service) listProducts(ctx context.Context, f ProductFilter) (pagination.Page[models.Product], error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Product{}).Where("active = ?", true)
	if f.Category != "" {
		q = q.Where("category_id IN (?)", db.Model(&models.Category{}).Select("id").Where("slug = ? AND active = ?", f.Category, true))
	}
	if f.Collection != "" {
		q = q.Where("collection_id IN (?)", db.Model(&models.Collection{}).Select("id").Where("slug = ? AND active = ?", f.Collection, true))
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", like, like, like)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.MinPrice > 0 {
		q = q.Where("price_cents >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_cents <= ?", f.MaxPrice)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Page[models.Product]{}, err
	}

	var items []models.Product
	err := q.Order(sortClause(f.Sort)).
		Offset(f.Offset()).Limit(f.PageSize).
		Preload("Images", orderedImages).
		Preload("Category").Preload("Collection").
		Find(&items).Error
	if err != nil {
		return pagination.Page[models.Product]{}, err
	}
	return pagination.NewPage(items, total, f.Params), nil
}

func sortClause(sort string) string {
	switch sort {
	case "price_asc":
		return "price_cents asc, id desc"
	case "price_desc":
		return "price_cents desc, id desc"
	case "name":
		return "name asc, id asc"
	default:
		return "created_at desc, id desc"
	}
}

// GetProduct accepts a numeric id or a slug. Inactive products are not
// visible to the storefront.
func (s *Service) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	key := KeyPrefix + "product:" + idOrSlug
	p, err := cached(ctx, s, key, func() (models.Product, error) {
		var p models.Product
		q := s.db.WithContext(ctx).Where("active = ?", true).
			Preload("Images", orderedImages).Preload("Category").Preload("Collection")
		if id, convErr := strconv.ParseUint(idOrSlug, 10, 64); convErr == nil {
			q = q.Where("id = ?", id)
		} else {
			q = q.Where("slug = ?", idOrSlug)
		}
		if err := q.First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return p, ErrProductNotFound
			}
			return p, err
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s, KeyPrefix+"categories", func() ([]models.Category, error) {
		items := []models.Category{}
		err := s.db.WithContext(ctx).Where("active = ?", true).Order("name asc").Find(&items).Error
		return items, err
	})
}

func (s *Service) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return cached(ctx, s, KeyPrefix+"collections", func() ([]models.Collection, error) {
		items := []models.Collection{}
		err := s.db.WithContext(ctx).Where("active = ?", true).Order("featured desc, name asc").Find(&items).Error
		return items, err
	})
}

func (s *Service) ListCarousel(ctx context.Context) ([]models.CarouselItem, error) {
	return cached(ctx, s, KeyPrefix+"carousel", func() ([]models.CarouselItem, error) {
		items := []models.CarouselItem{}
		err := s.db.WithContext(ctx).Where("active = ?", true).Order("position asc, id asc").Find(&items).Error
		return items, err
	})
}

// PublicSettings returns the settings flagged public as key → value.
func (s *Service) PublicSettings(ctx context.Context) (map[string]string, error) {
	return cached(ctx, s, KeyPrefix+"settings", func() (map[string]string, error) {
		var rows []models.Setting
		if err := s.db.WithContext(ctx).Where("public = ?", true).Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make(map[string]string, len(rows))
		for _, r := range rows {
			out[r.Key] = r.Value
		}
		return out, nil
	})
}
