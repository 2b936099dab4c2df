package list_bookings

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// Даты трактуются как календарные дни школы, endDate включительно
func ToServiceRequest(
	slotIDStr string,
	absenceIDStr string,
	statusStr string,
	startDateStr string,
	endDateStr string,
	loc *time.Location,
) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	if slotIDStr != "" {
		req.SlotID = &slotIDStr
	}

	if absenceIDStr != "" {
		req.AbsenceID = &absenceIDStr
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if startDateStr != "" {
		date, err := time.ParseInLocation(domain.DateFormat, startDateStr, loc)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
	}

	if endDateStr != "" {
		date, err := time.ParseInLocation(domain.DateFormat, endDateStr, loc)
		if err != nil {
			return nil, err
		}
		end := date.AddDate(0, 0, 1)
		req.EndDate = &end
	}

	return req, nil
}
