package admin

import (
	"context"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
)

func (s *Service) ListOrders(ctx context.Context, f orders.ListFilter) (pagination.Page[models.Order], error) {
	return s.orders.List(ctx, f)
}

func (s *Service) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	return s.orders.Get(ctx, number)
}

// UpdateOrderStatus moves an order along its lifecycle and announces the
// change.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor Actor, number string, status models.OrderStatus) (*models.Order, error) {
	before, err := s.orders.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateStatus(ctx, number, status)
	if err != nil {
		return nil, err
	}
	details := map[string]any{"from": before.Status, "to": status, "table": o.Table}
	if err := writeAudit(s.db.WithContext(ctx), actor, ActionUpdate, "order", number, details); err != nil {
		s.logger.Error().Err(err).Str("number", number).Msg("could not write audit log")
	}
	if before.Status != status {
		s.dispatcher.Dispatch(notify.NewEvent(notify.EventOrderStatus, number, o))
	}
	return o, nil
}
