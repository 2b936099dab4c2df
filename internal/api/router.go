package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/admin_courses"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/admin_slots"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/cancel_absence"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/cancel_booking"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/create_absence"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/create_booking"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/get_absence"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/get_booking"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/get_settings"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/list_absences"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/list_bookings"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/search_slots"
	"github.com/m04kA/kesseki-furikae/internal/api/handlers/update_settings"
	"github.com/m04kA/kesseki-furikae/internal/api/middleware"
	"github.com/m04kA/kesseki-furikae/pkg/metrics"
)

const msgUnhealthy = "サービスを利用できません"

// Handlers все HTTP обработчики сервиса
type Handlers struct {
	CreateAbsence  *create_absence.Handler
	CancelAbsence  *cancel_absence.Handler
	GetAbsence     *get_absence.Handler
	ListAbsences   *list_absences.Handler
	SearchSlots    *search_slots.Handler
	CreateBooking  *create_booking.Handler
	CancelBooking  *cancel_booking.Handler
	GetBooking     *get_booking.Handler
	ListBookings   *list_bookings.Handler
	AdminSlots     *admin_slots.Handler
	AdminCourses   *admin_courses.Handler
	GetSettings    *get_settings.Handler
	UpdateSettings *update_settings.Handler
}

// Options параметры роутера
type Options struct {
	AdminTokenHash string
	Metrics        *metrics.Metrics // nil - метрики выключены
	MetricsPath    string
	HealthCheck    func(ctx context.Context) error // nil - всегда healthy
	Logger         middleware.Logger
}

// NewRouter собирает маршруты: /api/v1 публичные, /api/v1/admin под X-Admin-Token
func NewRouter(h Handlers, opts Options) *mux.Router {
	r := mux.NewRouter()

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
		r.Handle(opts.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", healthHandler(opts.HealthCheck)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (гость по ссылке или коду подтверждения)
	// ============================================================

	// --- Пропуски ---
	api.HandleFunc("/absences", h.CreateAbsence.Handle).Methods(http.MethodPost)
	api.HandleFunc("/absences/lookup", h.GetAbsence.HandleLookup).Methods(http.MethodGet)
	api.HandleFunc("/absences/resume/{token}", h.GetAbsence.Handle).Methods(http.MethodGet)
	api.HandleFunc("/absences/resume/{token}/cancel", h.CancelAbsence.HandleByToken).Methods(http.MethodPost)
	api.HandleFunc("/absences/{absenceId}/cancel", h.CancelAbsence.HandleByCode).Methods(http.MethodPost)

	// --- Поиск слотов ---
	api.HandleFunc("/slots/search", h.SearchSlots.Handle).Methods(http.MethodGet)

	// --- Отработки ---
	api.HandleFunc("/bookings", h.CreateBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/cancel/{token}", h.CancelBooking.HandleCancelToken).Methods(http.MethodPost)
	api.HandleFunc("/bookings/decline/{token}", h.CancelBooking.HandleDeclineToken).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{requestId}/cancel", h.CancelBooking.HandleByCode).Methods(http.MethodPost)

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-Token)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth(opts.AdminTokenHash, opts.Logger))

	// --- Слоты ---
	admin.HandleFunc("/slots", h.AdminSlots.List).Methods(http.MethodGet)
	admin.HandleFunc("/slots", h.AdminSlots.Create).Methods(http.MethodPost)
	admin.HandleFunc("/slots/recurring", h.AdminSlots.CreateRecurring).Methods(http.MethodPost)
	admin.HandleFunc("/slots/{slotId}", h.AdminSlots.Get).Methods(http.MethodGet)
	admin.HandleFunc("/slots/{slotId}", h.AdminSlots.Update).Methods(http.MethodPut)
	admin.HandleFunc("/slots/{slotId}", h.AdminSlots.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/slots/{slotId}/reconcile", h.AdminSlots.Reconcile).Methods(http.MethodPost)

	// --- Пропуски ---
	admin.HandleFunc("/absences", h.ListAbsences.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/absences/{absenceId}/cancel", h.CancelAbsence.HandleByAdmin).Methods(http.MethodPost)

	// --- Отработки ---
	admin.HandleFunc("/bookings", h.ListBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings", h.CreateBooking.HandleAdmin).Methods(http.MethodPost)
	admin.HandleFunc("/bookings/{requestId}", h.GetBooking.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{requestId}/cancel", h.CancelBooking.HandleByAdmin).Methods(http.MethodPost)

	// --- Курсы ---
	admin.HandleFunc("/courses", h.AdminCourses.List).Methods(http.MethodGet)
	admin.HandleFunc("/courses", h.AdminCourses.Create).Methods(http.MethodPost)
	admin.HandleFunc("/courses/{courseId}", h.AdminCourses.Get).Methods(http.MethodGet)
	admin.HandleFunc("/courses/{courseId}", h.AdminCourses.Update).Methods(http.MethodPut)
	admin.HandleFunc("/courses/{courseId}", h.AdminCourses.Delete).Methods(http.MethodDelete)

	// --- Настройки ---
	admin.HandleFunc("/settings", h.GetSettings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/settings", h.UpdateSettings.Handle).Methods(http.MethodPut)

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				handlers.RespondError(w, http.StatusServiceUnavailable, msgUnhealthy)
				return
			}
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
