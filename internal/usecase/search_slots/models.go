package search_slots

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Request модель запроса на поиск слотов для отработки
type Request struct {
	ClassBand     domain.ClassBand // Уровень ребенка
	AbsentDate    time.Time        // Дата пропуска, от нее считается окно
	ExcludeSlotID string           // Исходный слот пропуска (не предлагается)
	OnlyAvailable bool             // Скрыть заполненные слоты
}

// Response модель ответа со списком слотов
type Response struct {
	ClassBand  domain.ClassBand
	AbsentDate time.Time
	WindowFrom time.Time // включительно
	WindowTo   time.Time // включительно
	Slots      []Slot    // отсортированы по времени начала
}

// Slot слот с посчитанной доступностью
type Slot struct {
	SlotID        string
	LessonDate    time.Time
	StartTime     types.TimeString
	StartsAt      time.Time
	CourseLabel   string
	ClassBand     domain.ClassBand
	CapacityLimit int
	Remaining     int                      // свободные места для отработки, не меньше 0
	Level         domain.AvailabilityLevel // open / low / full
	Label         string                   // "open, 2 remaining" / "low, 1 remaining" / "full"
}
