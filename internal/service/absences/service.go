package absences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	absenceRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/absence"
	slotRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/slot"
	"github.com/m04kA/kesseki-furikae/internal/service/absences/models"
)

// Service read-only представления пропусков
type Service struct {
	absenceRepo AbsenceRepository
	requestRepo RequestRepository
	slotRepo    SlotRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса пропусков
func NewService(
	absenceRepo AbsenceRepository,
	requestRepo RequestRepository,
	slotRepo SlotRepository,
	logger Logger,
) *Service {
	return &Service{
		absenceRepo: absenceRepo,
		requestRepo: requestRepo,
		slotRepo:    slotRepo,
		logger:      logger,
	}
}

// GetByResumeToken возвращает пропуск по ссылке возобновления
// вместе с его заявками и пропущенным слотом
func (s *Service) GetByResumeToken(ctx context.Context, token string) (*models.AbsenceResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: resume token is required", ErrInvalidInput)
	}

	absence, err := s.absenceRepo.GetByResumeToken(ctx, token)
	if err != nil {
		if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
			s.logger.Warn("GetByResumeToken: absence not found")
			return nil, ErrAbsenceNotFound
		}
		s.logger.Error("GetByResumeToken: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetByResumeToken - repository error: %w", ErrInternal, err)
	}

	return s.view(ctx, "GetByResumeToken", absence)
}

// LookupByConfirmCode ищет пропуски и записи по коду подтверждения
// Пустое имя допускается только для администратора
func (s *Service) LookupByConfirmCode(ctx context.Context, req *models.LookupRequest) (*models.LookupResponse, error) {
	code := strings.TrimSpace(req.Code)
	if !isConfirmCode(code) {
		return nil, fmt.Errorf("%w: code must be 6 digits", ErrInvalidInput)
	}
	childName := strings.TrimSpace(req.ChildName)

	s.logger.Info("LookupByConfirmCode: lookup, childName set=%t", childName != "")

	absences, err := s.absenceRepo.ListByConfirmCode(ctx, code)
	if err != nil {
		s.logger.Error("LookupByConfirmCode: repository error: %v", err)
		return nil, fmt.Errorf("%w: LookupByConfirmCode - repository error: %w", ErrInternal, err)
	}

	resp := &models.LookupResponse{
		Absences: make([]*models.AbsenceResponse, 0, len(absences)),
		Bookings: []*models.RequestSummary{},
	}

	for _, absence := range absences {
		if !sameChild(childName, absence.ChildName) {
			continue
		}
		view, err := s.view(ctx, "LookupByConfirmCode", absence)
		if err != nil {
			return nil, err
		}
		resp.Absences = append(resp.Absences, view)
	}

	requests, err := s.requestRepo.ListByConfirmCode(ctx, code)
	if err != nil {
		s.logger.Error("LookupByConfirmCode: repository error: %v", err)
		return nil, fmt.Errorf("%w: LookupByConfirmCode - repository error: %w", ErrInternal, err)
	}
	for _, r := range requests {
		// заявки пропусков уже вошли в их представления
		if r.IsLinked() || !sameChild(childName, r.ChildName) {
			continue
		}
		resp.Bookings = append(resp.Bookings, models.FromDomainRequest(r))
	}

	s.logger.Info("LookupByConfirmCode: found %d absences, %d bookings", len(resp.Absences), len(resp.Bookings))
	return resp, nil
}

// List возвращает пропуски по фильтру (админка)
func (s *Service) List(ctx context.Context, req *models.ListAbsencesRequest) (*models.AbsenceListResponse, error) {
	filter := domain.AbsenceFilter{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	if req.ClassBand != nil {
		band, err := domain.ParseClassBand(*req.ClassBand)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown classBand %q", ErrInvalidInput, *req.ClassBand)
		}
		filter.ClassBand = &band
	}
	if req.Status != nil {
		status := domain.AbsenceStatus(*req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		filter.Status = &status
	}

	absences, err := s.absenceRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	resp := &models.AbsenceListResponse{
		Absences: make([]*models.AbsenceResponse, 0, len(absences)),
		Total:    len(absences),
	}
	for _, absence := range absences {
		view, err := s.view(ctx, "List", absence)
		if err != nil {
			return nil, err
		}
		resp.Absences = append(resp.Absences, view)
	}

	s.logger.Info("List: fetched %d absences", resp.Total)
	return resp, nil
}

// view собирает пропуск с заявками и исходным слотом
// Удаленный исходный слот не ошибка: пропуск показывается без него
func (s *Service) view(ctx context.Context, op string, absence *domain.Absence) (*models.AbsenceResponse, error) {
	requests, err := s.requestRepo.ListByAbsence(ctx, absence.ID)
	if err != nil {
		s.logger.Error("%s: failed to list requests of absence id=%s: %v", op, absence.ID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	original, err := s.slotRepo.GetByID(ctx, absence.OriginalSlotID)
	if err != nil {
		if !errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Error("%s: failed to get slot id=%s: %v", op, absence.OriginalSlotID, err)
			return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
		}
		original = nil
	}

	return models.FromDomainAbsence(absence, requests, original), nil
}

func isConfirmCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// sameChild пустой filter совпадает с любым именем
func sameChild(filter, name string) bool {
	return filter == "" || strings.EqualFold(filter, strings.TrimSpace(name))
}
