package admin

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/storage"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

// ImageInput updates an existing product image.
type ImageInput struct {
	Alt      *string `json:"alt"`
	Position *int    `json:"position"`
	Primary  *bool   `json:"is_primary"`
}

func productImages(tx *gorm.DB, productID uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := tx.Where("product_id = ?", productID).Order("position asc, id asc").Find(&images).Error
	return images, err
}

func findImage(tx *gorm.DB, productID, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	err := tx.Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func setPrimary(tx *gorm.DB, productID, imageID uint) error {
	return tx.Model(&models.ProductImage{}).Where("product_id = ?", productID).
		Update("is_primary", gorm.Expr("id = ?", imageID)).Error
}

// AddImage stores an uploaded picture and attaches it to the product. The
// first image of a product becomes its primary image.
func (s *Service) AddImage(ctx context.Context, actor Actor, productID uint, file *multipart.FileHeader, alt string) (*models.ProductImage, error) {
	if _, err := first[models.Product](s.db.WithContext(ctx), productID, ErrProductNotFound); err != nil {
		return nil, err
	}
	obj, err := storage.SaveImage(ctx, s.store, file, fmt.Sprintf("products/%d", productID), s.maxUploadSize)
	if err != nil {
		return nil, err
	}

	img := &models.ProductImage{ProductID: productID, URL: obj.URL, StorageKey: obj.Key, Alt: strings.TrimSpace(alt)}
	err = s.mutate(ctx, actor, ActionCreate, "product_image", func(tx *gorm.DB) (any, any, error) {
		existing, err := productImages(tx, productID)
		if err != nil {
			return nil, nil, err
		}
		img.Position = len(existing)
		if n := len(existing); n > 0 {
			img.Position = existing[n-1].Position + 1
		}
		img.Primary = len(existing) == 0
		if err := tx.Create(img).Error; err != nil {
			return nil, nil, err
		}
		return img.ID, map[string]any{"product_id": productID, "key": obj.Key}, nil
	})
	if err != nil {
		s.removeObject(ctx, obj.Key)
		return nil, err
	}
	return img, nil
}

func (s *Service) UpdateImage(ctx context.Context, actor Actor, productID, imageID uint, in ImageInput) (*models.ProductImage, error) {
	var img *models.ProductImage
	err := s.mutate(ctx, actor, ActionUpdate, "product_image", func(tx *gorm.DB) (any, any, error) {
		var err error
		if img, err = findImage(tx, productID, imageID); err != nil {
			return nil, nil, err
		}
		updates := map[string]any{}
		if in.Alt != nil {
			updates["alt"] = strings.TrimSpace(*in.Alt)
		}
		if in.Position != nil {
			if *in.Position < 0 {
				return nil, nil, &validate.ValidationError{Field: "position", Message: "Posição inválida"}
			}
			updates["position"] = *in.Position
		}
		if len(updates) > 0 {
			if err := tx.Model(img).Updates(updates).Error; err != nil {
				return nil, nil, err
			}
		}
		if in.Primary != nil && *in.Primary {
			if err := setPrimary(tx, productID, imageID); err != nil {
				return nil, nil, err
			}
		}
		return imageID, in, tx.First(img, imageID).Error
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ReorderImages assigns positions following ids; every image of the product
// must be listed exactly once.
func (s *Service) ReorderImages(ctx context.Context, actor Actor, productID uint, ids []uint) ([]models.ProductImage, error) {
	var out []models.ProductImage
	err := s.mutate(ctx, actor, ActionUpdate, "product_image", func(tx *gorm.DB) (any, any, error) {
		images, err := productImages(tx, productID)
		if err != nil {
			return nil, nil, err
		}
		if err := sameIDs(ids, len(images), func(i int) uint { return images[i].ID }); err != nil {
			return nil, nil, err
		}
		for pos, id := range ids {
			if err := tx.Model(&models.ProductImage{}).Where("id = ?", id).Update("position", pos).Error; err != nil {
				return nil, nil, err
			}
		}
		out, err = productImages(tx, productID)
		return productID, map[string]any{"order": ids}, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sameIDs reports a validation error unless ids is a permutation of the n
// ids yielded by at.
func sameIDs(ids []uint, n int, at func(int) uint) error {
	bad := &validate.ValidationError{Field: "ids", Message: "A lista deve conter todos os itens exatamente uma vez"}
	if len(ids) != n {
		return bad
	}
	want := make(map[uint]bool, n)
	for i := 0; i < n; i++ {
		want[at(i)] = true
	}
	for _, id := range ids {
		if !want[id] {
			return bad
		}
		delete(want, id)
	}
	return nil
}

// DeleteImage removes the image row and its object. When the primary image
// goes, the next one by position takes its place.
func (s *Service) DeleteImage(ctx context.Context, actor Actor, productID, imageID uint) error {
	var key string
	err := s.mutate(ctx, actor, ActionDelete, "product_image", func(tx *gorm.DB) (any, any, error) {
		img, err := findImage(tx, productID, imageID)
		if err != nil {
			return nil, nil, err
		}
		key = img.StorageKey
		if err := tx.Delete(img).Error; err != nil {
			return nil, nil, err
		}
		if img.Primary {
			rest, err := productImages(tx, productID)
			if err != nil {
				return nil, nil, err
			}
			if len(rest) > 0 {
				if err := setPrimary(tx, productID, rest[0].ID); err != nil {
					return nil, nil, err
				}
			}
		}
		return imageID, map[string]any{"product_id": productID, "key": key}, nil
	})
	if err != nil {
		return err
	}
	s.removeObject(ctx, key)
	return nil
}
