package admin

import (
	"context"
	"mime/multipart"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/storage"
)

// Upload stores a free-standing image (banners, category art) under folder.
func (s *Service) Upload(ctx context.Context, actor Actor, file *multipart.FileHeader, folder string) (*storage.Object, error) {
	if folder == "" {
		folder = "uploads"
	}
	obj, err := storage.SaveImage(ctx, s.store, file, folder, s.maxUploadSize)
	if err != nil {
		return nil, err
	}
	if err := writeAudit(s.db.WithContext(ctx), actor, ActionCreate, "upload", obj.Key, obj); err != nil {
		s.logger.Error().Err(err).Str("key", obj.Key).Msg("could not write audit log")
	}
	return obj, nil
}

func (s *Service) DeleteUpload(ctx context.Context, actor Actor, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	if err := writeAudit(s.db.WithContext(ctx), actor, ActionDelete, "upload", key, nil); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("could not write audit log")
	}
	return nil
}
