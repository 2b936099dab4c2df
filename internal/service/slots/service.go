package slots

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	courseRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/course"
	slotRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/slot"
	"github.com/m04kA/kesseki-furikae/internal/service/slots/models"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Service сервис администрирования слотов
type Service struct {
	slotRepo     SlotRepository
	absenceRepo  AbsenceRepository
	requestRepo  RequestRepository
	courseRepo   CourseRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	absenceRepo AbsenceRepository,
	requestRepo RequestRepository,
	courseRepo CourseRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:     slotRepo,
		absenceRepo:  absenceRepo,
		requestRepo:  requestRepo,
		courseRepo:   courseRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Create создает один слот
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("Create: date=%s, time=%s, band=%s", req.LessonDate, req.StartTime, req.ClassBand)

	date, err := parseDate("lessonDate", req.LessonDate)
	if err != nil {
		return nil, err
	}
	startTime, err := parseTime("startTime", req.StartTime)
	if err != nil {
		return nil, err
	}
	band, err := parseBand(req.ClassBand)
	if err != nil {
		return nil, err
	}
	if err := validateCounters(req.CapacityLimit, req.CapacityCurrent, 0); err != nil {
		s.logger.Warn("Create: invalid counters: %v", err)
		return nil, err
	}

	slot := s.newSlot(date, startTime, band, strings.TrimSpace(req.CourseLabel), req.CapacityLimit, req.CapacityCurrent)

	created, err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		if errors.Is(err, slotRepo.ErrDuplicateSlot) {
			s.logger.Warn("Create: slot %s %s %s already exists", req.LessonDate, req.StartTime, band)
			return nil, ErrDuplicateSlot
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created slot id=%s", created.ID)
	return models.FromDomainSlot(created), nil
}

// CreateRecurring создает слоты на N недель вперед, по одному на каждую
// комбинацию (дата, время, уровень). Существующие слоты пропускаются,
// поэтому повторный вызов с теми же параметрами ничего не дублирует.
func (s *Service) CreateRecurring(ctx context.Context, req *models.CreateRecurringRequest) (*models.RecurringResponse, error) {
	s.logger.Info("CreateRecurring: start=%s, weeks=%d, times=%v, bands=%v", req.StartDate, req.Weeks, req.StartTimes, req.ClassBands)

	// 1. Предзаполнение из курса
	if req.CourseID != nil {
		if err := s.prefillFromCourse(ctx, req); err != nil {
			return nil, err
		}
	}

	// 2. Разбор параметров
	startDate, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	if req.Weeks < 1 || req.Weeks > domain.MaxRecurringWeeks {
		return nil, fmt.Errorf("%w: weeks must be between 1 and %d", ErrInvalidInput, domain.MaxRecurringWeeks)
	}
	if len(req.StartTimes) == 0 || len(req.ClassBands) == 0 {
		return nil, fmt.Errorf("%w: startTimes and classBands are required", ErrInvalidInput)
	}

	times := make([]types.TimeString, 0, len(req.StartTimes))
	for _, raw := range req.StartTimes {
		t, err := parseTime("startTimes", raw)
		if err != nil {
			return nil, err
		}
		times = append(times, t)
	}

	bands := make([]domain.ClassBand, 0, len(req.ClassBands))
	for _, raw := range req.ClassBands {
		band, err := parseBand(raw)
		if err != nil {
			return nil, err
		}
		bands = append(bands, band)
	}

	if err := validateCounters(req.CapacityLimit, req.CapacityCurrent, 0); err != nil {
		s.logger.Warn("CreateRecurring: invalid counters: %v", err)
		return nil, err
	}

	label := strings.TrimSpace(req.CourseLabel)
	result := &models.RecurringResponse{Created: []string{}, Skipped: []string{}}

	// 3. Весь пакет в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		result.Created = result.Created[:0]
		result.Skipped = result.Skipped[:0]

		for week := 0; week < req.Weeks; week++ {
			date := startDate.AddDate(0, 0, 7*week)

			for _, t := range times {
				for _, band := range bands {
					existing, err := s.slotRepo.GetByNaturalKey(txCtx, date, t, band)
					if err == nil {
						result.Skipped = append(result.Skipped, existing.ID)
						continue
					}
					if !errors.Is(err, slotRepo.ErrSlotNotFound) {
						s.logger.Error("CreateRecurring: failed to check slot %s %s %s: %v",
							date.Format(domain.DateFormat), t, band, err)
						return fmt.Errorf("%w: CreateRecurring - repository error: %w", ErrInternal, err)
					}

					created, err := s.slotRepo.Create(txCtx, s.newSlot(date, t, band, label, req.CapacityLimit, req.CapacityCurrent))
					if err != nil {
						s.logger.Error("CreateRecurring: failed to create slot %s %s %s: %v",
							date.Format(domain.DateFormat), t, band, err)
						return fmt.Errorf("%w: CreateRecurring - repository error: %w", ErrInternal, err)
					}
					result.Created = append(result.Created, created.ID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateRecurring: created=%d, skipped=%d", len(result.Created), len(result.Skipped))
	return result, nil
}

// prefillFromCourse заполняет пустые поля пакета значениями курса
func (s *Service) prefillFromCourse(ctx context.Context, req *models.CreateRecurringRequest) error {
	course, err := s.courseRepo.GetByID(ctx, *req.CourseID)
	if err != nil {
		if errors.Is(err, courseRepo.ErrCourseNotFound) {
			s.logger.Warn("CreateRecurring: course id=%s not found", *req.CourseID)
			return ErrCourseNotFound
		}
		s.logger.Error("CreateRecurring: failed to get course id=%s: %v", *req.CourseID, err)
		return fmt.Errorf("%w: CreateRecurring - repository error: %w", ErrInternal, err)
	}

	if strings.TrimSpace(req.CourseLabel) == "" {
		req.CourseLabel = course.Label
	}
	if len(req.StartTimes) == 0 {
		req.StartTimes = []string{course.StartTime.String()}
	}
	if len(req.ClassBands) == 0 {
		req.ClassBands = []string{string(course.ClassBand)}
	}
	if req.CapacityLimit == 0 {
		req.CapacityLimit = course.CapacityLimit
	}

	return nil
}

// Get возвращает слот с посчитанной доступностью
func (s *Service) Get(ctx context.Context, id string) (*models.SlotResponse, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("Get: slot id=%s not found", id)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Get: repository error for slot id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
	}
	return models.FromDomainSlot(slot), nil
}

// List возвращает слоты по фильтру
func (s *Service) List(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	filter := domain.SlotFilter{
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
		OnlyAvailable: req.OnlyAvailable,
	}
	if req.ClassBand != nil {
		band, err := parseBand(*req.ClassBand)
		if err != nil {
			return nil, err
		}
		filter.ClassBand = &band
	}

	slots, err := s.slotRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d slots", len(slots))
	return models.FromDomainSlotList(slots), nil
}

func (s *Service) newSlot(date time.Time, startTime types.TimeString, band domain.ClassBand, label string, limit, current int) *domain.Slot {
	slot := &domain.Slot{
		ID:              uuid.NewString(),
		LessonDate:      domain.DateOnly(date),
		StartTime:       startTime,
		CourseLabel:     label,
		ClassBand:       band,
		CapacityLimit:   limit,
		CapacityCurrent: current,
	}
	slot.ComputeStartsAt(s.location)
	return slot
}

// lockSorted блокирует слоты в порядке возрастания id
func (s *Service) lockSorted(ctx context.Context, ids []string) ([]*domain.Slot, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	locked := make([]*domain.Slot, 0, len(sorted))
	for _, id := range sorted {
		slot, err := s.slotRepo.LockByID(ctx, id)
		if err != nil {
			return nil, err
		}
		locked = append(locked, slot)
	}
	return locked, nil
}
