package search_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	"github.com/m04kA/kesseki-furikae/internal/testutil"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
)

func newUseCase(store *memory.Store, now time.Time, windowDays int) *UseCase {
	uc := NewUseCase(store.Slots(), testutil.Settings{Value: domain.Settings{MakeupWindowDays: windowDays}}, logger.NewNop())
	uc.timeProvider = testutil.NewClock(now)
	return uc
}

func TestExecute_ClassifiesAvailability(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 14, 12, 0, 0, 0, testutil.JST)

	open := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 16), Limit: 10, Current: 8})
	low := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8, MakeupUsed: 1})
	full := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 18), Limit: 10, Current: 10})
	// несогласованные счетчики не дают отрицательного остатка
	over := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 19), Limit: 10, Current: 9, MakeupUsed: 3})

	resp, err := newUseCase(store, now, 30).Execute(context.Background(), &Request{
		ClassBand:  domain.ClassBandBeginner,
		AbsentDate: testutil.Date(2026, 4, 15),
	})
	require.NoError(t, err)

	assert.Equal(t, testutil.Date(2026, 3, 16), resp.WindowFrom)
	assert.Equal(t, testutil.Date(2026, 5, 15), resp.WindowTo)

	require.Len(t, resp.Slots, 4)

	assert.Equal(t, open.ID, resp.Slots[0].SlotID)
	assert.Equal(t, 2, resp.Slots[0].Remaining)
	assert.Equal(t, domain.AvailabilityOpen, resp.Slots[0].Level)
	assert.Equal(t, "open, 2 remaining", resp.Slots[0].Label)

	assert.Equal(t, low.ID, resp.Slots[1].SlotID)
	assert.Equal(t, domain.AvailabilityLow, resp.Slots[1].Level)
	assert.Equal(t, "low, 1 remaining", resp.Slots[1].Label)

	assert.Equal(t, full.ID, resp.Slots[2].SlotID)
	assert.Equal(t, "full", resp.Slots[2].Label)

	assert.Equal(t, over.ID, resp.Slots[3].SlotID)
	assert.Equal(t, 0, resp.Slots[3].Remaining)
	assert.Equal(t, domain.AvailabilityFull, resp.Slots[3].Level)
}

func TestExecute_FiltersWindowBandAndPast(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 15, 16, 0, 0, 0, testutil.JST)

	// начинается ровно сейчас, уже не предлагается
	testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Start: "16:00", Limit: 10, Current: 8})
	later := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Start: "18:00", Limit: 10, Current: 8})
	edge := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 22), Limit: 10, Current: 8})
	testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 23), Limit: 10, Current: 8})
	testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 16), Band: domain.ClassBandAdvanced, Limit: 10, Current: 8})
	full := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 10})

	uc := newUseCase(store, now, 7)

	resp, err := uc.Execute(context.Background(), &Request{
		ClassBand:  domain.ClassBandBeginner,
		AbsentDate: testutil.Date(2026, 4, 15),
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		ids = append(ids, s.SlotID)
	}
	assert.Equal(t, []string{later.ID, full.ID, edge.ID}, ids)

	resp, err = uc.Execute(context.Background(), &Request{
		ClassBand:     domain.ClassBandBeginner,
		AbsentDate:    testutil.Date(2026, 4, 15),
		ExcludeSlotID: later.ID,
		OnlyAvailable: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, edge.ID, resp.Slots[0].SlotID)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newUseCase(memory.NewStore(), time.Now(), 30)

	_, err := uc.Execute(context.Background(), &Request{ClassBand: "expert", AbsentDate: testutil.Date(2026, 4, 15)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ClassBand: domain.ClassBandBeginner})
	require.ErrorIs(t, err, ErrInvalidInput)
}
