package models

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// CreateCourseRequest запрос на создание курса
// Weekday: 0 - воскресенье ... 6 - суббота
type CreateCourseRequest struct {
	Label         string `json:"label" validate:"required,max=100"`
	Weekday       int    `json:"weekday" validate:"min=0,max=6"`
	StartTime     string `json:"startTime" validate:"required"` // HH:MM
	ClassBand     string `json:"classBand" validate:"required"`
	CapacityLimit int    `json:"capacityLimit" validate:"min=1,max=200"`
}

// UpdateCourseRequest обновляются только переданные поля
type UpdateCourseRequest struct {
	Label         *string `json:"label,omitempty" validate:"omitempty,max=100"`
	Weekday       *int    `json:"weekday,omitempty" validate:"omitempty,min=0,max=6"`
	StartTime     *string `json:"startTime,omitempty"`
	ClassBand     *string `json:"classBand,omitempty"`
	CapacityLimit *int    `json:"capacityLimit,omitempty" validate:"omitempty,min=1,max=200"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

// CourseResponse курс
type CourseResponse struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	Weekday       int       `json:"weekday"`
	StartTime     string    `json:"startTime"`
	ClassBand     string    `json:"classBand"`
	CapacityLimit int       `json:"capacityLimit"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CourseListResponse список курсов
type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
}

// FromDomainCourse конвертирует domain модель в DTO
func FromDomainCourse(c *domain.Course) *CourseResponse {
	return &CourseResponse{
		ID:            c.ID,
		Label:         c.Label,
		Weekday:       int(c.Weekday),
		StartTime:     c.StartTime.String(),
		ClassBand:     string(c.ClassBand),
		CapacityLimit: c.CapacityLimit,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// FromDomainCourseList конвертирует список курсов
func FromDomainCourseList(courses []*domain.Course) *CourseListResponse {
	resp := &CourseListResponse{Courses: make([]*CourseResponse, 0, len(courses))}
	for _, c := range courses {
		resp.Courses = append(resp.Courses, FromDomainCourse(c))
	}
	return resp
}
