package admin_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/service/slots"
	"github.com/m04kA/kesseki-furikae/internal/service/slots/models"
)

const (
	msgInvalidRequestBody = "リクエストの形式が正しくありません"
	msgInvalidParams      = "検索条件の形式が正しくありません"
	msgInvalidDateRange   = "開始日は終了日以前の日付を指定してください"
	msgInvalidInput       = "入力内容に誤りがあります"
	msgSlotNotFound       = "レッスン枠が見つかりません"
	msgCourseNotFound     = "コースが見つかりません"
	msgDuplicateSlot      = "同じ日付・時間・レベルのレッスン枠がすでに存在します"
	msgSlotReferenced     = "欠席連絡が登録されているため、このレッスン枠は削除できません"
	msgSlotInUse          = "欠席連絡または振替予約があるため、レベルや日付は変更できません"
	msgCapacityConflict   = "確定済みの振替予約が定員を超えるため変更できません"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/admin/slots
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSlotRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /admin/slots - Invalid request")
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /admin/slots", "", err)
		return
	}

	h.logger.Info("POST /admin/slots - Slot created successfully: slot_id=%s", result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// CreateRecurring POST /api/v1/admin/slots/recurring
func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRecurringRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /admin/slots/recurring - Invalid request")
		return
	}

	result, err := h.service.CreateRecurring(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /admin/slots/recurring", "", err)
		return
	}

	h.logger.Info("POST /admin/slots/recurring - Slots created successfully: created=%d, skipped=%d",
		len(result.Created), len(result.Skipped))
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Get GET /api/v1/admin/slots/{slotId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	result, err := h.service.Get(r.Context(), slotID)
	if err != nil {
		h.respondError(w, "GET /admin/slots/{id}", slotID, err)
		return
	}

	h.logger.Info("GET /admin/slots/{id} - Slot retrieved successfully: slot_id=%s", slotID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// List GET /api/v1/admin/slots
// Query params: dateFrom, dateTo (YYYY-MM-DD), classBand, onlyAvailable - все опциональны
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req, err := ToListRequest(query.Get("dateFrom"), query.Get("dateTo"), query.Get("classBand"), query.Get("onlyAvailable"))
	if err != nil {
		h.logger.Warn("GET /admin/slots - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	if !dateRange(req) {
		h.logger.Warn("GET /admin/slots - Invalid date range: from=%s, to=%s", query.Get("dateFrom"), query.Get("dateTo"))
		handlers.RespondBadRequest(w, msgInvalidDateRange)
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "GET /admin/slots", "", err)
		return
	}

	h.logger.Info("GET /admin/slots - Slots retrieved successfully: count=%d", result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update PUT /api/v1/admin/slots/{slotId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	var req models.UpdateSlotRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("PUT /admin/slots/{id} - Invalid request: slot_id=%s", slotID)
		return
	}

	result, err := h.service.Update(r.Context(), slotID, &req)
	if err != nil {
		h.respondError(w, "PUT /admin/slots/{id}", slotID, err)
		return
	}

	h.logger.Info("PUT /admin/slots/{id} - Slot updated successfully: slot_id=%s, applied_to=%d, resynced=%d",
		slotID, len(result.AppliedTo), result.RequestsResynced)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/admin/slots/{slotId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	result, err := h.service.Delete(r.Context(), slotID)
	if err != nil {
		h.respondError(w, "DELETE /admin/slots/{id}", slotID, err)
		return
	}

	h.logger.Info("DELETE /admin/slots/{id} - Slot deleted successfully: slot_id=%s, requests_deleted=%d",
		slotID, result.RequestsDeleted)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Reconcile POST /api/v1/admin/slots/{slotId}/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	result, err := h.service.Reconcile(r.Context(), slotID)
	if err != nil {
		h.respondError(w, "POST /admin/slots/{id}/reconcile", slotID, err)
		return
	}

	h.logger.Info("POST /admin/slots/{id}/reconcile - Slot reconciled: slot_id=%s, changed=%t",
		slotID, result.Changed)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, route, slotID string, err error) {
	switch {
	case errors.Is(err, slots.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, slots.ErrSlotNotFound):
		h.logger.Warn("%s - Slot not found: slot_id=%s", route, slotID)
		handlers.RespondNotFound(w, msgSlotNotFound)

	case errors.Is(err, slots.ErrCourseNotFound):
		h.logger.Warn("%s - Course not found", route)
		handlers.RespondNotFound(w, msgCourseNotFound)

	case errors.Is(err, slots.ErrDuplicateSlot):
		h.logger.Warn("%s - Duplicate slot: slot_id=%s", route, slotID)
		handlers.RespondConflict(w, msgDuplicateSlot)

	case errors.Is(err, slots.ErrSlotReferenced):
		h.logger.Warn("%s - Slot referenced by absences: slot_id=%s", route, slotID)
		handlers.RespondConflict(w, msgSlotReferenced)

	case errors.Is(err, slots.ErrSlotInUse):
		h.logger.Warn("%s - Slot in use: slot_id=%s", route, slotID)
		handlers.RespondConflict(w, msgSlotInUse)

	case errors.Is(err, slots.ErrCapacityConflict):
		h.logger.Warn("%s - Capacity conflict: slot_id=%s", route, slotID)
		handlers.RespondConflict(w, msgCapacityConflict)

	default:
		h.logger.Error("%s - Failed: slot_id=%s, error=%v", route, slotID, err)
		handlers.RespondInternalError(w)
	}
}
