package admin

import (
	"context"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
)

const (
	LowStockSetting          = "low_stock_threshold"
	DefaultLowStockThreshold = 5
	recentOrders             = 5
)

type Dashboard struct {
	Products          int64          `json:"products"`
	ActiveProducts    int64          `json:"active_products"`
	LowStock          int64          `json:"low_stock"`
	LowStockThreshold int            `json:"low_stock_threshold"`
	Categories        int64          `json:"categories"`
	Collections       int64          `json:"collections"`
	Orders            int64          `json:"orders"`
	PendingOrders     int64          `json:"pending_orders"`
	RevenueCents      int64          `json:"revenue_cents"`
	RecentOrders      []models.Order `json:"recent_orders"`
}

// Dashboard gathers the back-office home page figures.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{LowStockThreshold: s.intSetting(ctx, LowStockSetting, DefaultLowStockThreshold)}
	db := s.db.WithContext(ctx)

	counts := []struct {
		dst   *int64
		model any
		where []any
	}{
		{&d.Products, &models.Product{}, nil},
		{&d.ActiveProducts, &models.Product{}, []any{"active = ?", true}},
		{&d.LowStock, &models.Product{}, []any{"active = ? AND stock <= ?", true, d.LowStockThreshold}},
		{&d.Categories, &models.Category{}, nil},
		{&d.Collections, &models.Collection{}, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	d.Orders, d.PendingOrders, d.RevenueCents = stats.Orders, stats.Pending, stats.RevenueCents

	recent, err := s.orders.List(ctx, orders.ListFilter{Params: pagination.Params{Page: 1, PageSize: recentOrders}})
	if err != nil {
		return nil, err
	}
	d.RecentOrders = recent.Items
	return d, nil
}
