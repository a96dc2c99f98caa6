package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/menushare/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return classify(r.DB.WithContext(ctx).Create(order).Error)
}

func (r *GormRepo) ListOrders(ctx context.Context, menuID uuid.UUID) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.DB.WithContext(ctx).Where("menu_id = ?", menuID).Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
