// Package admin implements the back-office: catalog maintenance, uploads,
// settings, order follow-up and the dashboard. Every mutation is recorded in
// audit_logs and drops the storefront cache.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/storage"
)

var (
	ErrNotFound = errors.New("not found")

	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrImageNotFound      = fmt.Errorf("image %w", ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)
	ErrCollectionNotFound = fmt.Errorf("collection %w", ErrNotFound)
	ErrCarouselNotFound   = fmt.Errorf("carousel item %w", ErrNotFound)
	ErrSettingNotFound    = fmt.Errorf("setting %w", ErrNotFound)

	ErrSlugTaken = errors.New("slug already in use")
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Actor is the authenticated admin performing a mutation.
type Actor struct {
	ID    uint
	Email string
}

// Invalidator drops cached storefront data; *catalog.Service satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Dispatcher is satisfied by *notify.Dispatcher.
type Dispatcher interface {
	Dispatch(ev notify.Event)
}

type Service struct {
	db            *gorm.DB
	store         storage.Store
	orders        *orders.Store
	catalog       Invalidator
	dispatcher    Dispatcher
	maxUploadSize int64
	logger        zerolog.Logger
}

type Options struct {
	DB            *gorm.DB
	Store         storage.Store
	Orders        *orders.Store
	Catalog       Invalidator
	Dispatcher    Dispatcher
	MaxUploadSize int64
	Logger        zerolog.Logger
}

func NewService(o Options) *Service {
	return &Service{
		db:            o.DB,
		store:         o.Store,
		orders:        o.Orders,
		catalog:       o.Catalog,
		dispatcher:    o.Dispatcher,
		maxUploadSize: o.MaxUploadSize,
		logger:        o.Logger,
	}
}

// mutate runs fn in a transaction, writes the audit row alongside and
// invalidates the catalog cache once committed.
func (s *Service) mutate(ctx context.Context, actor Actor, action, entity string, fn func(tx *gorm.DB) (id any, details any, err error)) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, details, err := fn(tx)
		if err != nil {
			return err
		}
		return writeAudit(tx, actor, action, entity, id, details)
	})
	if err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	s.logger.Info().Uint("admin_id", actor.ID).Str("action", action).Str("entity", entity).Msg("admin change")
	return nil
}

func writeAudit(tx *gorm.DB, actor Actor, action, entity string, id, details any) error {
	var raw string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("audit details: %w", err)
		}
		raw = string(b)
	}
	return tx.Create(&models.AuditLog{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     action,
		Entity:     entity,
		EntityID:   fmt.Sprint(id),
		Details:    raw,
	}).Error
}

// removeObject deletes a stored object, logging failures; the row that
// referenced it is already gone.
func (s *Service) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("could not delete stored object")
	}
}

func first[T any](tx *gorm.DB, id uint, notFound error) (*T, error) {
	var v T
	if err := tx.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &v, nil
}

// AuditFilter narrows ListAuditLogs.
type AuditFilter struct {
	Entity  string
	AdminID uint
	pagination.Params
}

func (s *Service) ListAuditLogs(ctx context.Context, f AuditFilter) (pagination.Page[models.AuditLog], error) {
	f.Params = f.Params.Normalize()
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.AdminID != 0 {
		q = q.Where("admin_id = ?", f.AdminID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Page[models.AuditLog]{}, err
	}
	var rows []models.AuditLog
	if err := q.Order("created_at desc, id desc").Offset(f.Offset()).Limit(f.PageSize).Find(&rows).Error; err != nil {
		return pagination.Page[models.AuditLog]{}, err
	}
	return pagination.NewPage(rows, total, f.Params), nil
}
