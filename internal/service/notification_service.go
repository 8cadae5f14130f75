package service

import (
	"context"
	"fmt"
	"time"

	"pharmapos/internal/dto"
	"pharmapos/internal/repository"
)

// Alert types and priorities.
const (
	AlertLowStock = "low_stock"
	AlertExpired  = "expired"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// criticalStock is the level below which a low-stock alert is high priority.
const criticalStock = 5

type NotificationService interface {
	// Alerts lists low-stock alerts (most urgent first) followed by expired
	// products. It returns nothing when notifications are switched off.
	Alerts(ctx context.Context, userID string) ([]dto.AlertResponse, error)
}

type notificationService struct {
	products repository.ProductRepository
	settings SettingsReader
	now      func() time.Time
}

func NewNotificationService(products repository.ProductRepository, settings SettingsReader) NotificationService {
	return &notificationService{products: products, settings: settings, now: time.Now}
}

func (s *notificationService) Alerts(ctx context.Context, userID string) ([]dto.AlertResponse, error) {
	sys := s.settings.System()
	alerts := []dto.AlertResponse{}
	if !sys.Notifications {
		return alerts, nil
	}

	low, err := s.products.ListBelowStock(ctx, userID, sys.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}
	for _, p := range low {
		priority := PriorityMedium
		if p.StockQuantity < criticalStock {
			priority = PriorityHigh
		}
		alerts = append(alerts, dto.AlertResponse{
			Type:      AlertLowStock,
			Priority:  priority,
			ProductID: p.ID,
			Title:     "Low stock",
			Message:   fmt.Sprintf("%s has only %d units left", p.Name, p.StockQuantity),
		})
	}

	today := s.now().Format("2006-01-02")
	expired, err := s.products.ListExpiredBy(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("listing expired: %w", err)
	}
	for _, p := range expired {
		alerts = append(alerts, dto.AlertResponse{
			Type:      AlertExpired,
			Priority:  PriorityHigh,
			ProductID: p.ID,
			Title:     "Expired product",
			Message:   fmt.Sprintf("%s expired on %s", p.Name, *p.ExpiryDate),
		})
	}
	return alerts, nil
}
