package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	makeupRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/makeup"
)

// RequestRepository заявки на отработку в памяти
type RequestRepository struct {
	store *Store
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.MakeupRequest) (*domain.MakeupRequest, error) {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.requests {
		if existing.CancelToken == req.CancelToken || existing.DeclineToken == req.DeclineToken {
			return nil, makeupRepo.ErrDuplicateToken
		}
	}

	req.ID = ensureID(req.ID)
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.UpdatedAt = req.CreatedAt
	r.store.requests[req.ID] = *req

	return req, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.MakeupRequest, error) {
	defer r.store.lock(ctx)()

	req, ok := r.store.requests[id]
	if !ok {
		return nil, makeupRepo.ErrRequestNotFound
	}
	return &req, nil
}

func (r *RequestRepository) LockByID(ctx context.Context, id string) (*domain.MakeupRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *RequestRepository) GetByCancelToken(ctx context.Context, token string) (*domain.MakeupRequest, error) {
	return r.findOne(ctx, func(req *domain.MakeupRequest) bool { return req.CancelToken == token })
}

func (r *RequestRepository) GetByDeclineToken(ctx context.Context, token string) (*domain.MakeupRequest, error) {
	return r.findOne(ctx, func(req *domain.MakeupRequest) bool { return req.DeclineToken == token })
}

func (r *RequestRepository) findOne(ctx context.Context, match func(req *domain.MakeupRequest) bool) (*domain.MakeupRequest, error) {
	defer r.store.lock(ctx)()

	for _, req := range r.store.requests {
		if match(&req) {
			return &req, nil
		}
	}
	return nil, makeupRepo.ErrRequestNotFound
}

func (r *RequestRepository) ListByConfirmCode(ctx context.Context, code string) ([]*domain.MakeupRequest, error) {
	return r.findMany(ctx, func(req *domain.MakeupRequest) bool {
		return req.ConfirmCode != nil && *req.ConfirmCode == code
	}, bySlotStart)
}

func (r *RequestRepository) ListByAbsence(ctx context.Context, absenceID string) ([]*domain.MakeupRequest, error) {
	return r.findMany(ctx, func(req *domain.MakeupRequest) bool {
		return req.AbsenceID != nil && *req.AbsenceID == absenceID
	}, byCreated)
}

func (r *RequestRepository) ListBySlot(ctx context.Context, slotID string) ([]*domain.MakeupRequest, error) {
	return r.findMany(ctx, func(req *domain.MakeupRequest) bool {
		return req.SlotID == slotID
	}, byCreated)
}

func (r *RequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]*domain.MakeupRequest, error) {
	return r.findMany(ctx, func(req *domain.MakeupRequest) bool {
		return matchRequest(req, filter)
	}, bySlotStart)
}

func (r *RequestRepository) findMany(
	ctx context.Context,
	match func(req *domain.MakeupRequest) bool,
	less func(a, b *domain.MakeupRequest) bool,
) ([]*domain.MakeupRequest, error) {
	defer r.store.lock(ctx)()

	result := make([]*domain.MakeupRequest, 0)
	for _, req := range r.store.requests {
		if !match(&req) {
			continue
		}
		req := req
		result = append(result, &req)
	}

	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result, nil
}

func (r *RequestRepository) ExistsConfirmedForChild(ctx context.Context, slotID, childName string) (bool, error) {
	defer r.store.lock(ctx)()

	for _, req := range r.store.requests {
		if req.SlotID == slotID && req.ChildName == childName && req.IsConfirmed() {
			return true, nil
		}
	}
	return false, nil
}

func (r *RequestRepository) CountConfirmedBySlot(ctx context.Context, slotID string) (int, error) {
	defer r.store.lock(ctx)()

	count := 0
	for _, req := range r.store.requests {
		if req.SlotID == slotID && req.IsConfirmed() {
			count++
		}
	}
	return count, nil
}

func (r *RequestRepository) MarkCancelled(ctx context.Context, id string, reason domain.CancelReason, at time.Time) error {
	defer r.store.lock(ctx)()

	req, ok := r.store.requests[id]
	if !ok {
		return makeupRepo.ErrRequestNotFound
	}

	req.Status = domain.RequestStatusCancelled
	req.CancelReason = &reason
	req.CancelledAt = &at
	req.UpdatedAt = at
	r.store.requests[id] = req

	return nil
}

func (r *RequestRepository) UpdateSlotStartsAt(ctx context.Context, slotID string, startsAt time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var affected int64
	for id, req := range r.store.requests {
		if req.SlotID != slotID {
			continue
		}
		req.SlotStartsAt = startsAt
		req.UpdatedAt = time.Now()
		r.store.requests[id] = req
		affected++
	}
	return affected, nil
}

func (r *RequestRepository) DeleteBySlot(ctx context.Context, slotID string) (int64, error) {
	defer r.store.lock(ctx)()

	var affected int64
	for id, req := range r.store.requests {
		if req.SlotID == slotID {
			delete(r.store.requests, id)
			affected++
		}
	}
	return affected, nil
}

func matchRequest(req *domain.MakeupRequest, filter domain.RequestFilter) bool {
	if filter.SlotID != nil && req.SlotID != *filter.SlotID {
		return false
	}
	if filter.AbsenceID != nil && (req.AbsenceID == nil || *req.AbsenceID != *filter.AbsenceID) {
		return false
	}
	if filter.Status != nil && req.Status != *filter.Status {
		return false
	}
	if filter.StartFrom != nil && req.SlotStartsAt.Before(*filter.StartFrom) {
		return false
	}
	if filter.StartTo != nil && !req.SlotStartsAt.Before(*filter.StartTo) {
		return false
	}
	return true
}

func bySlotStart(a, b *domain.MakeupRequest) bool {
	if !a.SlotStartsAt.Equal(b.SlotStartsAt) {
		return a.SlotStartsAt.Before(b.SlotStartsAt)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func byCreated(a, b *domain.MakeupRequest) bool {
	return a.CreatedAt.Before(b.CreatedAt)
}
