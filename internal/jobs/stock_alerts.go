package jobs

import (
	"context"
	"log"

	"sandwichworks/internal/repositories"

	"github.com/google/uuid"
)

type StockAlertService struct {
	resourceRepo repositories.ResourceRepository
}

type StockAlert struct {
	ResourceID   uuid.UUID
	ResourceName string
	CurrentStock float64
	Unit         string
	Threshold    float64
}

func NewStockAlertService(resourceRepo repositories.ResourceRepository) *StockAlertService {
	return &StockAlertService{
		resourceRepo: resourceRepo,
	}
}

func (a *StockAlertService) CheckLowStock(ctx context.Context, threshold float64) ([]StockAlert, error) {
	if threshold <= 0 {
		threshold = 10 // Default threshold
	}

	resources, err := a.resourceRepo.List(ctx, 1000, 0) // Get all, in practice should paginate
	if err != nil {
		log.Printf("Failed to list resources for low stock check: %v", err)
		return nil, err
	}

	var alerts []StockAlert

	for _, res := range resources {
		if res.Quantity <= threshold {
			alert := StockAlert{
				ResourceID:   res.ID,
				ResourceName: res.Name,
				CurrentStock: res.Quantity,
				Unit:         res.Unit,
				Threshold:    threshold,
			}
			alerts = append(alerts, alert)
		}
	}

	return alerts, nil
}

func (a *StockAlertService) LogLowStockAlerts(ctx context.Context, alerts []StockAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("Low stock alerts (%d resources):", len(alerts))
	for _, alert := range alerts {
		log.Printf("- Resource '%s' has %.2f %s left (threshold: %.2f)",
			alert.ResourceName,
			alert.CurrentStock,
			alert.Unit,
			alert.Threshold)
	}
}

// Scheduled job entry point
func (a *StockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	alerts, err := a.CheckLowStock(ctx, 10)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}
	a.LogLowStockAlerts(ctx, alerts)

	log.Println("Scheduled low stock check completed successfully")
	return nil
}
