package admin_slots

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/service/slots/models"
)

type SlotService interface {
	Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error)
	CreateRecurring(ctx context.Context, req *models.CreateRecurringRequest) (*models.RecurringResponse, error)
	Get(ctx context.Context, id string) (*models.SlotResponse, error)
	List(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error)
	Update(ctx context.Context, id string, req *models.UpdateSlotRequest) (*models.UpdateSlotResponse, error)
	Delete(ctx context.Context, id string) (*models.DeleteSlotResponse, error)
	Reconcile(ctx context.Context, id string) (*models.ReconcileResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
