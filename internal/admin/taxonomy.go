package admin

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

// GroupInput creates or partially updates a category or a collection.
// Featured only applies to collections.
type GroupInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Featured    *bool   `json:"featured"`
	Active      *bool   `json:"active"`
}

type group struct {
	name, slug, description, imageURL *string
	featured, active                  *bool
}

func (g group) apply(tx *gorm.DB, model any, id uint, in GroupInput) error {
	if in.Name != nil {
		*g.name = strings.TrimSpace(*in.Name)
	}
	if err := validate.Required("name", *g.name, "Nome é obrigatório"); err != nil {
		return err
	}
	if in.Slug != nil || *g.slug == "" {
		var raw string
		if in.Slug != nil {
			raw = *in.Slug
		}
		slug, err := resolveSlug(tx, model, raw, *g.name, id)
		if err != nil {
			return err
		}
		*g.slug = slug
	}
	if in.Description != nil {
		*g.description = strings.TrimSpace(*in.Description)
	}
	if in.ImageURL != nil {
		*g.imageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Featured != nil && g.featured != nil {
		*g.featured = *in.Featured
	}
	if in.Active != nil {
		*g.active = *in.Active
	}
	return nil
}

func categoryFields(c *models.Category) group {
	return group{name: &c.Name, slug: &c.Slug, description: &c.Description, imageURL: &c.ImageURL, active: &c.Active}
}

func collectionFields(c *models.Collection) group {
	return group{name: &c.Name, slug: &c.Slug, description: &c.Description, imageURL: &c.ImageURL, featured: &c.Featured, active: &c.Active}
}

// ListCategories returns every category, inactive ones included.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	items := []models.Category{}
	err := s.db.WithContext(ctx).Order("name asc").Find(&items).Error
	return items, err
}

func (s *Service) CreateCategory(ctx context.Context, actor Actor, in GroupInput) (*models.Category, error) {
	c := &models.Category{Active: true}
	err := s.mutate(ctx, actor, ActionCreate, "category", func(tx *gorm.DB) (any, any, error) {
		if err := categoryFields(c).apply(tx, &models.Category{}, 0, in); err != nil {
			return nil, nil, err
		}
		if err := tx.Create(c).Error; err != nil {
			return nil, nil, err
		}
		return c.ID, in, nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor Actor, id uint, in GroupInput) (*models.Category, error) {
	var c *models.Category
	err := s.mutate(ctx, actor, ActionUpdate, "category", func(tx *gorm.DB) (any, any, error) {
		var err error
		if c, err = first[models.Category](tx, id, ErrCategoryNotFound); err != nil {
			return nil, nil, err
		}
		if err := categoryFields(c).apply(tx, &models.Category{}, id, in); err != nil {
			return nil, nil, err
		}
		return id, in, tx.Save(c).Error
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes the category; its products stay, uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, actor Actor, id uint) error {
	return s.mutate(ctx, actor, ActionDelete, "category", func(tx *gorm.DB) (any, any, error) {
		c, err := first[models.Category](tx, id, ErrCategoryNotFound)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return nil, nil, err
		}
		return id, map[string]string{"name": c.Name, "slug": c.Slug}, tx.Delete(c).Error
	})
}

// ListCollections returns every collection, inactive ones included.
func (s *Service) ListCollections(ctx context.Context) ([]models.Collection, error) {
	items := []models.Collection{}
	err := s.db.WithContext(ctx).Order("featured desc, name asc").Find(&items).Error
	return items, err
}

func (s *Service) CreateCollection(ctx context.Context, actor Actor, in GroupInput) (*models.Collection, error) {
	c := &models.Collection{Active: true}
	err := s.mutate(ctx, actor, ActionCreate, "collection", func(tx *gorm.DB) (any, any, error) {
		if err := collectionFields(c).apply(tx, &models.Collection{}, 0, in); err != nil {
			return nil, nil, err
		}
		if err := tx.Create(c).Error; err != nil {
			return nil, nil, err
		}
		return c.ID, in, nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCollection(ctx context.Context, actor Actor, id uint, in GroupInput) (*models.Collection, error) {
	var c *models.Collection
	err := s.mutate(ctx, actor, ActionUpdate, "collection", func(tx *gorm.DB) (any, any, error) {
		var err error
		if c, err = first[models.Collection](tx, id, ErrCollectionNotFound); err != nil {
			return nil, nil, err
		}
		if err := collectionFields(c).apply(tx, &models.Collection{}, id, in); err != nil {
			return nil, nil, err
		}
		return id, in, tx.Save(c).Error
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCollection removes the collection; its products stay, unassigned.
func (s *Service) DeleteCollection(ctx context.Context, actor Actor, id uint) error {
	return s.mutate(ctx, actor, ActionDelete, "collection", func(tx *gorm.DB) (any, any, error) {
		c, err := first[models.Collection](tx, id, ErrCollectionNotFound)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Model(&models.Product{}).Where("collection_id = ?", id).Update("collection_id", nil).Error; err != nil {
			return nil, nil, err
		}
		return id, map[string]string{"name": c.Name, "slug": c.Slug}, tx.Delete(c).Error
	})
}
