package bookings

import (
	"context"
	"errors"
	"fmt"

	makeupRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/makeup"
	"github.com/m04kA/kesseki-furikae/internal/service/bookings/models"
)

// Service read-only представления заявок на отработку
// Все изменения заявок идут через usecase create_booking / cancel_booking
type Service struct {
	requestRepo RequestRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса заявок
func NewService(requestRepo RequestRepository, logger Logger) *Service {
	return &Service{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// GetByID получает заявку по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s", id)

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, makeupRepo.ErrRequestNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainBooking(req), nil
}

// List получает заявки с фильтрацией для сверки администратором
//
// Примеры использования:
// - Все заявки на слот: указать SlotID
// - Заявки за период: StartDate и EndDate по времени начала урока
// - Только подтвержденные: Status = "confirmed"
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := "List: fetching bookings"
	if req.SlotID != nil {
		logMsg += fmt.Sprintf(", slot=%s", *req.SlotID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if req.StartDate != nil && req.EndDate != nil && !req.StartDate.Before(*req.EndDate) {
		s.logger.Warn("List: invalid period %s - %s", req.StartDate, req.EndDate)
		return nil, ErrInvalidTimeRange
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	requests, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d bookings", len(requests))
	return models.FromDomainBookingList(requests), nil
}
