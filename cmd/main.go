package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/api"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/admin_courses"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/admin_slots"
	cancelAbsenceHandler "github.com/m04kA/kesseki-furikae/internal/api/handlers/cancel_absence"
	cancelBookingHandler "github.com/m04kA/kesseki-furikae/internal/api/handlers/cancel_booking"
	createAbsenceHandler "github.com/m04kA/kesseki-furikae/internal/api/handlers/create_absence"
	createBookingHandler "github.com/m04kA/kesseki-furikae/internal/api/handlers/create_booking"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/get_absence"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/get_booking"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/get_settings"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/list_absences"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/list_bookings"
	searchSlotsHandler "github.com/m04kA/kesseki-furikae/internal/api/handlers/search_slots"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/update_settings"
	"github.com/m04kA/kesseki-furikae/internal/app/sweeper"
	"github.com/m04kA/kesseki-furikae/internal/config"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
	absencesService "github.com/m04kA/kesseki-furikae/internal/service/absences"
	bookingsService "github.com/m04kA/kesseki-furikae/internal/service/bookings"
	coursesService "github.com/m04kA/kesseki-furikae/internal/service/courses"
	settingsService "github.com/m04kA/kesseki-furikae/internal/service/settings"
	slotsService "github.com/m04kA/kesseki-furikae/internal/service/slots"
	cancelAbsenceUC "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_absence"
	cancelBookingUC "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_booking"
	createAbsenceUC "github.com/m04kA/kesseki-furikae/internal/usecase/create_absence"
	createBookingUC "github.com/m04kA/kesseki-furikae/internal/usecase/create_booking"
	searchSlotsUC "github.com/m04kA/kesseki-furikae/internal/usecase/search_slots"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/metrics"
	"github.com/m04kA/kesseki-furikae/pkg/tokengen"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting kesseki-furikae...")
	log.Info("Configuration loaded from config.toml (storage=%s, timezone=%s)", cfg.Database.Storage, cfg.Booking.Timezone)

	location := cfg.Location()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStorage(startupCtx, cfg, metricsCollector, stopMetricsCh, log)
	cancelStartup()
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Уведомления
	var sender mailer.Sender
	switch cfg.Mail.Sender {
	case config.SenderSendGrid:
		sender = mailer.NewSendGridSender(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, cfg.Mail.SubjectPrefix)
		log.Info("Mail sender: sendgrid (from=%s)", cfg.Mail.FromEmail)
	default:
		sender = mailer.NewConsoleSender(log)
		log.Info("Mail sender: console")
	}

	notifier, err := mailer.NewNotifier(sender, cfg.Mail.PublicBaseURL, location, log)
	if err != nil {
		log.Fatal("Failed to initialize notifier: %v", err)
	}

	tokens := tokengen.New()

	// Инициализируем сервисы
	settingsSvc := settingsService.NewService(store.settings, cfg.DefaultSettings(), log)
	absenceSvc := absencesService.NewService(store.absences, store.requests, store.slots, log)
	bookingSvc := bookingsService.NewService(store.requests, log)
	courseSvc := coursesService.NewService(store.courses, log)
	slotSvc := slotsService.NewService(store.slots, store.absences, store.requests, store.courses, store.tx, location, log)

	// Инициализируем use cases
	createAbsenceUseCase := createAbsenceUC.NewUseCase(
		store.slots,
		store.absences,
		settingsSvc,
		tokens,
		notifier,
		store.tx,
		location,
		log,
	)
	cancelAbsenceUseCase := cancelAbsenceUC.NewUseCase(
		store.absences,
		store.requests,
		store.slots,
		notifier,
		store.tx,
		log,
	)
	searchSlotsUseCase := searchSlotsUC.NewUseCase(store.slots, settingsSvc, log)
	createBookingUseCase := createBookingUC.NewUseCase(
		store.absences,
		store.requests,
		store.slots,
		settingsSvc,
		tokens,
		notifier,
		store.tx,
		location,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		store.requests,
		store.absences,
		store.slots,
		notifier,
		store.tx,
		log,
	)

	// Настраиваем роутер
	router := api.NewRouter(api.Handlers{
		CreateAbsence:  createAbsenceHandler.NewHandler(createAbsenceUseCase, log),
		CancelAbsence:  cancelAbsenceHandler.NewHandler(cancelAbsenceUseCase, log),
		GetAbsence:     get_absence.NewHandler(absenceSvc, log),
		ListAbsences:   list_absences.NewHandler(absenceSvc, log),
		SearchSlots:    searchSlotsHandler.NewHandler(searchSlotsUseCase, log),
		CreateBooking:  createBookingHandler.NewHandler(createBookingUseCase, log),
		CancelBooking:  cancelBookingHandler.NewHandler(cancelBookingUseCase, log),
		GetBooking:     get_booking.NewHandler(bookingSvc, log),
		ListBookings:   list_bookings.NewHandler(bookingSvc, location, log),
		AdminSlots:     admin_slots.NewHandler(slotSvc, log),
		AdminCourses:   admin_courses.NewHandler(courseSvc, log),
		GetSettings:    get_settings.NewHandler(settingsSvc, log),
		UpdateSettings: update_settings.NewHandler(settingsSvc, log),
	}, api.Options{
		AdminTokenHash: cfg.Admin.TokenHash,
		Metrics:        metricsCollector,
		MetricsPath:    cfg.Metrics.Path,
		HealthCheck:    store.ping,
		Logger:         log,
	})

	// Фоновый обход ближайших слотов
	var sw *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		// Validate уже проверил формат окна
		windowStart, _ := types.NewTimeStringFromString(cfg.Sweeper.WindowStart)
		windowEnd, _ := types.NewTimeStringFromString(cfg.Sweeper.WindowEnd)

		sw = sweeper.New(store.slots, metricsCollector, sweeper.Options{
			Interval:    time.Duration(cfg.Sweeper.Interval) * time.Minute,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			Lookahead:   time.Duration(cfg.Sweeper.LookaheadHours) * time.Hour,
		}, location, log)
		sw.Start(context.Background())
		log.Info("Sweeper started (interval=%dm, window=%s-%s)", cfg.Sweeper.Interval, windowStart, windowEnd)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if sw != nil {
		sw.Stop()
		log.Info("Sweeper stopped")
	}

	// Дожидаемся писем, отправленных в фоне
	notifier.Wait()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
