package admin

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

type CarouselInput struct {
	Title      *string `json:"title"`
	Subtitle   *string `json:"subtitle"`
	ImageURL   *string `json:"image_url"`
	StorageKey *string `json:"storage_key"`
	LinkURL    *string `json:"link_url"`
	Position   *int    `json:"position"`
	Active     *bool   `json:"active"`
}

func applyCarousel(it *models.CarouselItem, in CarouselInput) error {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&it.Title, in.Title)
	set(&it.Subtitle, in.Subtitle)
	set(&it.ImageURL, in.ImageURL)
	set(&it.StorageKey, in.StorageKey)
	set(&it.LinkURL, in.LinkURL)
	if err := validate.Required("image_url", it.ImageURL, "Imagem é obrigatória"); err != nil {
		return err
	}
	if in.Position != nil {
		if *in.Position < 0 {
			return &validate.ValidationError{Field: "position", Message: "Posição inválida"}
		}
		it.Position = *in.Position
	}
	if in.Active != nil {
		it.Active = *in.Active
	}
	return nil
}

// ListCarousel returns every banner, inactive ones included, by position.
func (s *Service) ListCarousel(ctx context.Context) ([]models.CarouselItem, error) {
	items := []models.CarouselItem{}
	err := s.db.WithContext(ctx).Order("position asc, id asc").Find(&items).Error
	return items, err
}

// CreateCarouselItem appends a banner after the last one unless a position
// is given.
func (s *Service) CreateCarouselItem(ctx context.Context, actor Actor, in CarouselInput) (*models.CarouselItem, error) {
	it := &models.CarouselItem{Active: true}
	err := s.mutate(ctx, actor, ActionCreate, "carousel", func(tx *gorm.DB) (any, any, error) {
		if in.Position == nil {
			var next struct{ Next int }
			if err := tx.Model(&models.CarouselItem{}).Select("COALESCE(MAX(position) + 1, 0) AS next").Scan(&next).Error; err != nil {
				return nil, nil, err
			}
			it.Position = next.Next
		}
		if err := applyCarousel(it, in); err != nil {
			return nil, nil, err
		}
		if err := tx.Create(it).Error; err != nil {
			return nil, nil, err
		}
		return it.ID, in, nil
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) UpdateCarouselItem(ctx context.Context, actor Actor, id uint, in CarouselInput) (*models.CarouselItem, error) {
	var it *models.CarouselItem
	var oldKey string
	err := s.mutate(ctx, actor, ActionUpdate, "carousel", func(tx *gorm.DB) (any, any, error) {
		var err error
		if it, err = first[models.CarouselItem](tx, id, ErrCarouselNotFound); err != nil {
			return nil, nil, err
		}
		oldKey = it.StorageKey
		if err := applyCarousel(it, in); err != nil {
			return nil, nil, err
		}
		return id, in, tx.Save(it).Error
	})
	if err != nil {
		return nil, err
	}
	if oldKey != it.StorageKey {
		s.removeObject(ctx, oldKey)
	}
	return it, nil
}

func (s *Service) DeleteCarouselItem(ctx context.Context, actor Actor, id uint) error {
	var key string
	err := s.mutate(ctx, actor, ActionDelete, "carousel", func(tx *gorm.DB) (any, any, error) {
		it, err := first[models.CarouselItem](tx, id, ErrCarouselNotFound)
		if err != nil {
			return nil, nil, err
		}
		key = it.StorageKey
		return id, map[string]string{"title": it.Title}, tx.Delete(it).Error
	})
	if err != nil {
		return err
	}
	s.removeObject(ctx, key)
	return nil
}

// ReorderCarousel assigns positions following ids, which must name every
// banner exactly once.
func (s *Service) ReorderCarousel(ctx context.Context, actor Actor, ids []uint) ([]models.CarouselItem, error) {
	err := s.mutate(ctx, actor, ActionUpdate, "carousel", func(tx *gorm.DB) (any, any, error) {
		var items []models.CarouselItem
		if err := tx.Find(&items).Error; err != nil {
			return nil, nil, err
		}
		if err := sameIDs(ids, len(items), func(i int) uint { return items[i].ID }); err != nil {
			return nil, nil, err
		}
		for pos, id := range ids {
			if err := tx.Model(&models.CarouselItem{}).Where("id = ?", id).Update("position", pos).Error; err != nil {
				return nil, nil, err
			}
		}
		return "order", map[string]any{"order": ids}, nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListCarousel(ctx)
}
