package admin_slots

import (
	"strconv"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/service/slots/models"
)

// ToListRequest формирует фильтр списка слотов из query параметров
func ToListRequest(dateFromStr, dateToStr, classBandStr, onlyAvailableStr string) (*models.ListSlotsRequest, error) {
	req := &models.ListSlotsRequest{}

	if dateFromStr != "" {
		date, err := domain.ParseDate(dateFromStr)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &date
	}

	if dateToStr != "" {
		date, err := domain.ParseDate(dateToStr)
		if err != nil {
			return nil, err
		}
		req.DateTo = &date
	}

	if classBandStr != "" {
		req.ClassBand = &classBandStr
	}

	if onlyAvailableStr != "" {
		onlyAvailable, err := strconv.ParseBool(onlyAvailableStr)
		if err != nil {
			return nil, err
		}
		req.OnlyAvailable = onlyAvailable
	}

	return req, nil
}

// dateRange проверка, что dateFrom не позже dateTo
func dateRange(req *models.ListSlotsRequest) bool {
	if req.DateFrom == nil || req.DateTo == nil {
		return true
	}
	return !req.DateFrom.After(*req.DateTo)
}
