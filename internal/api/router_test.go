package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

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
	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	absencesService "github.com/m04kA/kesseki-furikae/internal/service/absences"
	bookingsService "github.com/m04kA/kesseki-furikae/internal/service/bookings"
	coursesService "github.com/m04kA/kesseki-furikae/internal/service/courses"
	settingsService "github.com/m04kA/kesseki-furikae/internal/service/settings"
	slotsService "github.com/m04kA/kesseki-furikae/internal/service/slots"
	"github.com/m04kA/kesseki-furikae/internal/testutil"
	cancelAbsenceUC "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_absence"
	cancelBookingUC "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_booking"
	createAbsenceUC "github.com/m04kA/kesseki-furikae/internal/usecase/create_absence"
	createBookingUC "github.com/m04kA/kesseki-furikae/internal/usecase/create_booking"
	searchSlotsUC "github.com/m04kA/kesseki-furikae/internal/usecase/search_slots"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/tokengen"
)

const adminToken = "admin-s3cret"

type fixture struct {
	store    *memory.Store
	notifier *testutil.Notifier
	router   http.Handler
}

func newFixture(t *testing.T, health func(ctx context.Context) error) *fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	require.NoError(t, err)

	store := memory.NewStore()
	notifier := &testutil.Notifier{}
	log := logger.NewNop()
	tokens := tokengen.New()

	settingsSvc := settingsService.NewService(store.Settings(), domain.DefaultSettings(), log)

	createAbsence := createAbsenceUC.NewUseCase(store.Slots(), store.Absences(), settingsSvc, tokens, notifier, store, testutil.JST, log)
	cancelAbsence := cancelAbsenceUC.NewUseCase(store.Absences(), store.Requests(), store.Slots(), notifier, store, log)
	searchSlots := searchSlotsUC.NewUseCase(store.Slots(), settingsSvc, log)
	createBooking := createBookingUC.NewUseCase(store.Absences(), store.Requests(), store.Slots(), settingsSvc, tokens, notifier, store, testutil.JST, log)
	cancelBooking := cancelBookingUC.NewUseCase(store.Requests(), store.Absences(), store.Slots(), notifier, store, log)

	absenceSvc := absencesService.NewService(store.Absences(), store.Requests(), store.Slots(), log)
	bookingSvc := bookingsService.NewService(store.Requests(), log)
	courseSvc := coursesService.NewService(store.Courses(), log)
	slotSvc := slotsService.NewService(store.Slots(), store.Absences(), store.Requests(), store.Courses(), store, testutil.JST, log)

	router := NewRouter(Handlers{
		CreateAbsence:  create_absence.NewHandler(createAbsence, log),
		CancelAbsence:  cancel_absence.NewHandler(cancelAbsence, log),
		GetAbsence:     get_absence.NewHandler(absenceSvc, log),
		ListAbsences:   list_absences.NewHandler(absenceSvc, log),
		SearchSlots:    search_slots.NewHandler(searchSlots, log),
		CreateBooking:  create_booking.NewHandler(createBooking, log),
		CancelBooking:  cancel_booking.NewHandler(cancelBooking, log),
		GetBooking:     get_booking.NewHandler(bookingSvc, log),
		ListBookings:   list_bookings.NewHandler(bookingSvc, testutil.JST, log),
		AdminSlots:     admin_slots.NewHandler(slotSvc, log),
		AdminCourses:   admin_courses.NewHandler(courseSvc, log),
		GetSettings:    get_settings.NewHandler(settingsSvc, log),
		UpdateSettings: update_settings.NewHandler(settingsSvc, log),
	}, Options{
		AdminTokenHash: string(hash),
		HealthCheck:    health,
		Logger:         log,
	})

	return &fixture{store: store, notifier: notifier, router: router}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, admin bool) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(middleware.AdminTokenHeader, adminToken)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

// futureDate дата через days дней по времени школы, чтобы уроки еще не начались
func futureDate(days int) time.Time {
	return domain.TodayIn(time.Now(), testutil.JST).AddDate(0, 0, days)
}

func TestRouter_GuardianFlow(t *testing.T) {
	f := newFixture(t, nil)

	absentDate := futureDate(2)
	original := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: absentDate, Limit: 10, Current: 10})
	makeup := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: futureDate(5), Limit: 10, Current: 9})

	// 1. Сообщаем о пропуске
	rec, absence := f.do(t, http.MethodPost, "/api/v1/absences", map[string]interface{}{
		"childName":    "Hana",
		"classBand":    "beginner",
		"absentDate":   absentDate.Format(domain.DateFormat),
		"slotId":       original.ID,
		"contactEmail": "guardian@example.com",
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resumeToken := absence["resumeToken"].(string)
	assert.Len(t, absence["confirmCode"], 6)
	assert.Equal(t, 9, testutil.GetSlot(t, f.store, original.ID).CapacityCurrent)

	// Повторная отправка той же формы
	rec, _ = f.do(t, http.MethodPost, "/api/v1/absences", map[string]interface{}{
		"childName":  "Hana",
		"classBand":  "beginner",
		"absentDate": absentDate.Format(domain.DateFormat),
		"slotId":     original.ID,
	}, false)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, 9, testutil.GetSlot(t, f.store, original.ID).CapacityCurrent)

	// 2. Ищем слоты: исходный не предлагается
	rec, search := f.do(t, http.MethodGet,
		"/api/v1/slots/search?classBand=beginner&absentDate="+absentDate.Format(domain.DateFormat)+"&excludeSlotId="+original.ID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slots := search["slots"].([]interface{})
	require.Len(t, slots, 1)
	found := slots[0].(map[string]interface{})
	assert.Equal(t, makeup.ID, found["slotId"])
	assert.Equal(t, "low", found["availability"])
	assert.Equal(t, "low, 1 remaining", found["label"])

	// 3. Записываемся по ссылке
	rec, booking := f.do(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"resumeToken": resumeToken,
		"slotId":      makeup.ID,
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "full", booking["availability"])
	cancelToken := booking["cancelToken"].(string)

	// Вторая запись по тому же пропуску отклоняется
	rec, _ = f.do(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"resumeToken": resumeToken,
		"slotId":      makeup.ID,
	}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 4. Отмена по ссылке освобождает место, повтор ссылки - 409
	rec, cancelled := f.do(t, http.MethodPost, "/api/v1/bookings/cancel/"+cancelToken, nil, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cancelled_by_guardian", cancelled["cancelReason"])
	assert.Equal(t, 0, testutil.GetSlot(t, f.store, makeup.ID).CapacityMakeupUsed)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/bookings/cancel/"+cancelToken, nil, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 5. Пропуск снова ожидает выбора слота
	rec, view := f.do(t, http.MethodGet, "/api/v1/absences/resume/"+resumeToken, nil, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", view["status"])
	assert.NotContains(t, view, "resumeToken")
}

func TestRouter_PublicErrors(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"unknown cancel token", http.MethodPost, "/api/v1/bookings/cancel/nope", nil, http.StatusNotFound},
		{"unknown decline token", http.MethodPost, "/api/v1/bookings/decline/nope", nil, http.StatusNotFound},
		{"unknown resume token", http.MethodGet, "/api/v1/absences/resume/nope", nil, http.StatusNotFound},
		{"search without band", http.MethodGet, "/api/v1/slots/search?absentDate=2026-04-15", nil, http.StatusBadRequest},
		{"search with bad date", http.MethodGet, "/api/v1/slots/search?classBand=beginner&absentDate=15-04-2026", nil, http.StatusBadRequest},
		{"absence with missing fields", http.MethodPost, "/api/v1/absences", map[string]interface{}{"childName": "Hana"}, http.StatusBadRequest},
		{"absence on unknown slot", http.MethodPost, "/api/v1/absences", map[string]interface{}{
			"childName": "Hana", "classBand": "beginner", "absentDate": "2030-04-15", "slotId": "missing",
		}, http.StatusNotFound},
		{"booking with short code", http.MethodPost, "/api/v1/bookings", map[string]interface{}{
			"absenceId": "a", "confirmCode": "12", "slotId": "s",
		}, http.StatusBadRequest},
		{"lookup without child name", http.MethodGet, "/api/v1/absences/lookup?code=123456", nil, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/v1/nowhere", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := f.do(t, tt.method, tt.path, tt.body, false)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	f := newFixture(t, nil)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/admin/slots", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/api/v1/admin/slots", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(0), body["total"])
}

func TestRouter_AdminFlow(t *testing.T) {
	f := newFixture(t, nil)

	lessonDate := futureDate(3)

	// Слот
	rec, slot := f.do(t, http.MethodPost, "/api/v1/admin/slots", map[string]interface{}{
		"lessonDate":      lessonDate.Format(domain.DateFormat),
		"startTime":       "17:00",
		"courseLabel":     "Wed beginner",
		"classBand":       "beginner",
		"capacityLimit":   8,
		"capacityCurrent": 7,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	slotID := slot["id"].(string)
	assert.Equal(t, "low, 1 remaining", slot["label"])

	// Повтор натурального ключа - 409
	rec, _ = f.do(t, http.MethodPost, "/api/v1/admin/slots", map[string]interface{}{
		"lessonDate":      lessonDate.Format(domain.DateFormat),
		"startTime":       "17:00",
		"classBand":       "beginner",
		"capacityLimit":   8,
		"capacityCurrent": 8,
	}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Запись администратором без пропуска
	rec, booking := f.do(t, http.MethodPost, "/api/v1/admin/bookings", map[string]interface{}{
		"childName": "Ren",
		"classBand": "beginner",
		"slotId":    slotID,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID := booking["requestId"].(string)
	assert.Nil(t, booking["absenceId"])

	// Слот заполнен
	rec, _ = f.do(t, http.MethodPost, "/api/v1/admin/bookings", map[string]interface{}{
		"childName": "Sora",
		"classBand": "beginner",
		"slotId":    slotID,
	}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Просмотр без токенов
	rec, view := f.do(t, http.MethodGet, "/api/v1/admin/bookings/"+requestID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmed", view["status"])
	assert.NotContains(t, view, "cancelToken")

	rec, list := f.do(t, http.MethodGet, "/api/v1/admin/bookings?slotId="+slotID+"&status=confirmed", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), list["total"])

	// Уменьшение лимита ниже подтвержденных отработок - 409
	rec, _ = f.do(t, http.MethodPut, "/api/v1/admin/slots/"+slotID, map[string]interface{}{
		"capacityLimit": 7,
	}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Отмена администратором
	rec, cancelled := f.do(t, http.MethodPost, "/api/v1/admin/bookings/"+requestID+"/cancel", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cancelled_by_admin", cancelled["cancelReason"])

	// Сверка счетчика ничего не меняет
	rec, reconcile := f.do(t, http.MethodPost, "/api/v1/admin/slots/"+slotID+"/reconcile", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, reconcile["changed"])

	// Удаление слота без пропусков
	rec, _ = f.do(t, http.MethodDelete, "/api/v1/admin/slots/"+slotID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = f.do(t, http.MethodGet, "/api/v1/admin/slots/"+slotID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminSettingsAndCourses(t *testing.T) {
	f := newFixture(t, nil)

	rec, settings := f.do(t, http.MethodGet, "/api/v1/admin/settings", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(30), settings["makeupWindowDays"])

	rec, settings = f.do(t, http.MethodPut, "/api/v1/admin/settings", map[string]interface{}{"makeupWindowDays": 14}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(14), settings["makeupWindowDays"])

	rec, _ = f.do(t, http.MethodPut, "/api/v1/admin/settings", map[string]interface{}{"makeupWindowDays": 0}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, course := f.do(t, http.MethodPost, "/api/v1/admin/courses", map[string]interface{}{
		"label":         "Wednesday beginners",
		"weekday":       3,
		"startTime":     "16:00",
		"classBand":     "beginner",
		"capacityLimit": 10,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	courseID := course["id"].(string)

	rec, _ = f.do(t, http.MethodDelete, "/api/v1/admin/courses/"+courseID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/admin/courses/"+courseID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	rec, _ := newFixture(t, nil).do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := func(context.Context) error { return errors.New("db down") }
	rec, _ = newFixture(t, failing).do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
