// Package orders reads and writes orders across the current orders table
// and the legacy pedidos table.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrNoOrderTable  = errors.New("no order table accepted the order")
)

// NewNumber returns a human friendly order number such as RJ-20261015-1A2B3C.
func NewNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("RJ-%s-%s", now.Format("20060102"), suffix)
}

type Store struct {
	db     *gorm.DB
	tables []string
	logger zerolog.Logger
}

// NewStore writes to tables in order of preference.
func NewStore(db *gorm.DB, tables []string, logger zerolog.Logger) *Store {
	return &Store{db: db, tables: tables, logger: logger}
}

// Create inserts the order and its items into the first table that accepts
// them. Each attempt is its own transaction; prepare runs first inside it
// (stock reservation, for instance) and its error aborts without trying the
// remaining tables.
func (s *Store) Create(ctx context.Context, order *models.Order, items []models.OrderItem, prepare func(tx *gorm.DB) error) (string, error) {
	var errs []error
	for _, table := range s.tables {
		var prepErr error
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if prepare != nil {
				if err := prepare(tx); err != nil {
					prepErr = err
					return err
				}
			}
			order.ID = 0
			if err := tx.Table(table).Create(order).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].ID = 0
				items[i].OrderTable = table
				items[i].OrderID = order.ID
			}
			if len(items) > 0 {
				return tx.Create(&items).Error
			}
			return nil
		})
		if prepErr != nil {
			return "", prepErr
		}
		if err == nil {
			order.Table = table
			order.Items = items
			return table, nil
		}
		s.logger.Warn().Err(err).Str("table", table).Str("number", order.Number).Msg("order insert failed, trying next table")
		errs = append(errs, fmt.Errorf("%s: %w", table, err))
	}
	return "", errors.Join(append([]error{ErrNoOrderTable}, errs...)...)
}

// ListFilter narrows the back-office order listing.
type ListFilter struct {
	Status models.OrderStatus
	// Query matches order number, customer name or email.
	Query string
	pagination.Params
}

func (s *Store) existingTables(ctx context.Context) []string {
	m := s.db.WithContext(ctx).Migrator()
	var out []string
	for _, t := range s.tables {
		if m.HasTable(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) filtered(ctx context.Context, table string, f ListFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Table(table)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?", like, like, like)
	}
	return q.Session(&gorm.Session{})
}

// List merges every order table, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) (pagination.Page[models.Order], error) {
	f.Params = f.Params.Normalize()
	var (
		total int64
		all   []models.Order
	)
	for _, table := range s.existingTables(ctx) {
		q := s.filtered(ctx, table, f)
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return pagination.Page[models.Order]{}, fmt.Errorf("count %s: %w", table, err)
		}
		total += n

		var rows []models.Order
		if err := q.Order("created_at desc, id desc").Limit(f.Offset() + f.PageSize).Find(&rows).Error; err != nil {
			return pagination.Page[models.Order]{}, fmt.Errorf("list %s: %w", table, err)
		}
		for i := range rows {
			rows[i].Table = table
		}
		all = append(all, rows...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	start := min(f.Offset(), len(all))
	end := min(start+f.PageSize, len(all))
	page := all[start:end]
	if err := s.loadItems(ctx, page); err != nil {
		return pagination.Page[models.Order]{}, err
	}
	return pagination.NewPage(page, total, f.Params), nil
}

func (s *Store) loadItems(ctx context.Context, list []models.Order) error {
	for i := range list {
		var items []models.OrderItem
		err := s.db.WithContext(ctx).
			Where("order_table = ? AND order_id = ?", list[i].Table, list[i].ID).
			Order("id asc").Find(&items).Error
		if err != nil {
			return err
		}
		list[i].Items = items
	}
	return nil
}

// Get finds an order by number in any table.
func (s *Store) Get(ctx context.Context, number string) (*models.Order, error) {
	for _, table := range s.existingTables(ctx) {
		var o models.Order
		err := s.db.WithContext(ctx).Table(table).Where("number = ?", number).First(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		o.Table = table
		list := []models.Order{o}
		if err := s.loadItems(ctx, list); err != nil {
			return nil, err
		}
		return &list[0], nil
	}
	return nil, ErrOrderNotFound
}

// UpdateStatus changes the status of the order with the given number.
func (s *Store) UpdateStatus(ctx context.Context, number string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	for _, table := range s.existingTables(ctx) {
		res := s.db.WithContext(ctx).Table(table).Where("number = ?", number).
			Updates(map[string]any{"status": status, "updated_at": time.Now()})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			s.logger.Info().Str("number", number).Str("status", string(status)).Str("table", table).Msg("order status updated")
			return s.Get(ctx, number)
		}
	}
	return nil, ErrOrderNotFound
}

// Stats summarises every order table.
type Stats struct {
	Orders       int64 `json:"orders"`
	Pending      int64 `json:"pending"`
	RevenueCents int64 `json:"revenue_cents"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for _, table := range s.existingTables(ctx) {
		db := s.db.WithContext(ctx)
		var n, pending int64
		if err := db.Table(table).Count(&n).Error; err != nil {
			return st, err
		}
		if err := db.Table(table).Where("status = ?", models.StatusPending).Count(&pending).Error; err != nil {
			return st, err
		}
		var revenue struct{ Total int64 }
		err := db.Table(table).Select("COALESCE(SUM(total_cents), 0) AS total").
			Where("status <> ?", models.StatusCancelled).Scan(&revenue).Error
		if err != nil {
			return st, err
		}
		st.Orders += n
		st.Pending += pending
		st.RevenueCents += revenue.Total
	}
	return st, nil
}
