package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/metrics"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Options параметры обхода
type Options struct {
	Interval    time.Duration
	WindowStart types.TimeString // включительно
	WindowEnd   types.TimeString // не включительно
	Lookahead   time.Duration
}

// Report результат одного обхода
type Report struct {
	UpcomingSlots int
	OpenSeats     map[domain.ClassBand]int
	FullSlots     int
}

// Sweeper периодически просматривает ближайшие слоты и публикует их доступность
// Только чтение: заявки и счетчики не меняются
type Sweeper struct {
	slotRepo     SlotRepository
	metrics      *metrics.Metrics
	opts         Options
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New создает sweeper; m может быть nil, если метрики выключены
func New(slotRepo SlotRepository, m *metrics.Metrics, opts Options, location *time.Location, logger Logger) *Sweeper {
	return &Sweeper{
		slotRepo:     slotRepo,
		metrics:      m,
		opts:         opts,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start запускает фоновый обход
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Sweeper: starting, interval=%s, window=%s-%s",
		s.opts.Interval, s.opts.WindowStart, s.opts.WindowEnd)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop останавливает обход и ждет завершения текущего прохода
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("Sweeper: stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	s.tick(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	now := s.timeProvider.Now()
	if !s.inWindow(now) {
		return
	}
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("Sweeper: sweep failed: %v", err)
	}
}

// inWindow проверяет, что локальное время попадает в [WindowStart, WindowEnd)
func (s *Sweeper) inWindow(now time.Time) bool {
	local := types.NewTimeString(now.In(s.location))
	return !local.IsBefore(s.opts.WindowStart) && local.IsBefore(s.opts.WindowEnd)
}

// Sweep выполняет один проход по слотам, начинающимся в пределах Lookahead
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	now := s.timeProvider.Now()
	until := now.Add(s.opts.Lookahead)

	slots, err := s.slotRepo.List(ctx, domain.SlotFilter{
		StartsAfter:  &now,
		StartsBefore: &until,
	})
	if err != nil {
		return nil, fmt.Errorf("sweeper: list slots: %w", err)
	}

	report := &Report{
		UpcomingSlots: len(slots),
		OpenSeats:     make(map[domain.ClassBand]int, len(domain.ClassBands)),
	}
	for _, band := range domain.ClassBands {
		report.OpenSeats[band] = 0
	}

	for _, slot := range slots {
		capacity := slot.Capacity()
		report.OpenSeats[slot.ClassBand] += capacity.Remaining
		if capacity.Level == domain.AvailabilityFull {
			report.FullSlots++
		}
		s.logger.Info("Sweeper: slot id=%s starts=%s band=%s %s",
			slot.ID, slot.StartsAt.In(s.location).Format(time.RFC3339), slot.ClassBand, capacity.Label())
	}

	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
		s.metrics.SweepUpcomingSlots.Set(float64(report.UpcomingSlots))
		for band, seats := range report.OpenSeats {
			s.metrics.SweepOpenSeats.WithLabelValues(string(band)).Set(float64(seats))
		}
	}

	s.logger.Info("Sweeper: %d upcoming slots, %d full", report.UpcomingSlots, report.FullSlots)
	return report, nil
}
