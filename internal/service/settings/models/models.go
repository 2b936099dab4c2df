package models

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// UpdateSettingsRequest запрос на изменение настроек
// Все поля опциональны - обновляются только переданные значения
type UpdateSettingsRequest struct {
	MakeupWindowDays *int    `json:"makeupWindowDays,omitempty" validate:"omitempty,min=1,max=180"`
	CutoffTime       *string `json:"cutoffTime,omitempty" validate:"omitempty,len=5"`
}

// SettingsResponse текущие настройки
type SettingsResponse struct {
	MakeupWindowDays int        `json:"makeupWindowDays"`
	CutoffTime       string     `json:"cutoffTime"` // только для отображения
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainSettings конвертирует domain модель в DTO
func FromDomainSettings(s domain.Settings) *SettingsResponse {
	resp := &SettingsResponse{
		MakeupWindowDays: s.MakeupWindowDays,
		CutoffTime:       s.CutoffTime.String(),
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
