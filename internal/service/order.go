package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/menushare/internal/models"
	"github.com/Skotchmaster/menushare/internal/mykafka"
	"github.com/Skotchmaster/menushare/internal/repo"
	"github.com/Skotchmaster/menushare/internal/transport"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// SubmitOrder records an order against an open menu. The submitted total and
// content are stored as given.
func (s *OrderService) SubmitOrder(ctx context.Context, req transport.SubmitOrderRequest) (*models.Order, error) {
	menuID, err := uuid.Parse(req.MenuID)
	if err != nil {
		return nil, fmt.Errorf("%w: menuId must be a uuid", ErrValidation)
	}
	buyer := strings.TrimSpace(req.BuyerName)
	if buyer == "" {
		return nil, fmt.Errorf("%w: buyerName required", ErrValidation)
	}
	if req.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: totalPrice must be >= 0", ErrValidation)
	}
	if len(req.Content) > 0 && !json.Valid(req.Content) {
		return nil, fmt.Errorf("%w: content must be json", ErrValidation)
	}

	menu, err := s.Repo.GetMenu(ctx, menuID)
	if err != nil {
		return nil, storeErr(ctx, err, "menu")
	}
	if !menu.IsOpen {
		return nil, fmt.Errorf("%w: menu is closed", ErrConflict)
	}

	order := &models.Order{
		MenuID:     menuID,
		BuyerName:  buyer,
		TotalPrice: req.TotalPrice,
		Content:    models.JSON(req.Content),
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		// menu deleted between the lookup and the insert
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, fmt.Errorf("%w: menu", ErrNotFound)
		}
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicOrders, menuID.String(), map[string]any{
		"type":       "order_submitted",
		"orderID":    order.ID,
		"menuID":     menuID,
		"buyerName":  buyer,
		"totalPrice": order.TotalPrice,
	})
	return order, nil
}

// ListOrders returns the orders of a menu owned by subject, oldest first.
func (s *OrderService) ListOrders(ctx context.Context, subject string, menuID uuid.UUID) ([]models.Order, error) {
	menu, err := s.Repo.GetMenu(ctx, menuID)
	if err != nil {
		return nil, storeErr(ctx, err, "menu")
	}
	if menu.OwnerID == nil || *menu.OwnerID != subject {
		return nil, fmt.Errorf("%w: menu belongs to another user", ErrForbidden)
	}
	return s.Repo.ListOrders(ctx, menuID)
}
