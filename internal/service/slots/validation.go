package slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

func parseDate(field, value string) (time.Time, error) {
	date, err := domain.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, field)
	}
	return date, nil
}

func parseTime(field, value string) (types.TimeString, error) {
	t, err := types.NewTimeStringFromString(strings.TrimSpace(value))
	if err != nil {
		return types.TimeString{}, fmt.Errorf("%w: %s must be HH:MM", ErrInvalidInput, field)
	}
	return t, nil
}

func parseBand(value string) (domain.ClassBand, error) {
	band, err := domain.ParseClassBand(value)
	if err != nil {
		return "", fmt.Errorf("%w: unknown classBand %q", ErrInvalidInput, value)
	}
	return band, nil
}

// validateCounters проверяет инварианты счетчиков слота
// Подтвержденные отработки должны помещаться в места, освобожденные пропусками
func validateCounters(limit, current, makeupUsed int) error {
	if limit < domain.MinCapacityLimit || limit > domain.MaxCapacityLimit {
		return fmt.Errorf("%w: capacityLimit must be between %d and %d",
			ErrInvalidInput, domain.MinCapacityLimit, domain.MaxCapacityLimit)
	}
	if current < 0 || current > limit {
		return fmt.Errorf("%w: capacityCurrent must be between 0 and capacityLimit", ErrInvalidInput)
	}
	if domain.MakeupAvailable(limit, current) < makeupUsed {
		return fmt.Errorf("%w: %d confirmed makeups, %d seats left after edit",
			ErrCapacityConflict, makeupUsed, domain.MakeupAvailable(limit, current))
	}
	return nil
}
