package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/pkg/sequence"
)

// InmemJobCardRepository keeps cards in a sequence.MemoryStore keyed by bill
// number, so that an assigner over the same store sees every stored card.
type InmemJobCardRepository struct {
	store *sequence.MemoryStore
}

func NewInmemJobCardRepository(store *sequence.MemoryStore) *InmemJobCardRepository {
	return &InmemJobCardRepository{store: store}
}

func (r *InmemJobCardRepository) all(ctx context.Context) []jobcard.JobCard {
	values := r.store.Values(ctx)
	out := make([]jobcard.JobCard, 0, len(values))
	for _, v := range values {
		if card, ok := v.(jobcard.JobCard); ok {
			out = append(out, card)
		}
	}
	return out
}

func (r *InmemJobCardRepository) GetByID(ctx context.Context, id uuid.UUID) (jobcard.JobCard, error) {
	for _, card := range r.all(ctx) {
		if card.ID() == id {
			return card, nil
		}
	}
	return jobcard.JobCard{}, jobcard.ErrNotFound
}

func (r *InmemJobCardRepository) GetByBillNumber(ctx context.Context, billNumber string) (jobcard.JobCard, error) {
	v, ok := r.store.Get(ctx, billNumber)
	if !ok {
		return jobcard.JobCard{}, jobcard.ErrNotFound
	}
	card, ok := v.(jobcard.JobCard)
	if !ok {
		return jobcard.JobCard{}, jobcard.ErrNotFound
	}
	return card, nil
}

func (r *InmemJobCardRepository) Find(ctx context.Context, params *jobcard.FindParams) ([]jobcard.JobCard, error) {
	if params == nil {
		params = &jobcard.FindParams{}
	}
	reg := strings.ToUpper(strings.TrimSpace(params.RegistrationNumber))

	var out []jobcard.JobCard
	for _, card := range r.all(ctx) {
		if params.Delivered != nil && card.Delivered() != *params.Delivered {
			continue
		}
		if reg != "" && card.Vehicle().RegistrationNumber != reg {
			continue
		}
		out = append(out, card)
	}

	key := func(c jobcard.JobCard) time.Time { return c.AdmittedDate() }
	if params.SortBy == jobcard.SortUpdatedAt {
		key = func(c jobcard.JobCard) time.Time { return c.UpdatedAt() }
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if params.Descending {
			a, b = b, a
		}
		if !key(a).Equal(key(b)) {
			return key(a).Before(key(b))
		}
		return a.CreatedAt().Before(b.CreatedAt())
	})

	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && params.Limit < len(out) {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *InmemJobCardRepository) CountDeliveredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	for _, card := range r.all(ctx) {
		at := card.UpdatedAt()
		if card.Delivered() && !at.Before(from) && at.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *InmemJobCardRepository) Create(ctx context.Context, card jobcard.JobCard) (jobcard.JobCard, error) {
	if card.BillNumber() == "" {
		return jobcard.JobCard{}, fmt.Errorf("create job card %s: bill number is empty", card.ID())
	}
	err := r.store.InTx(ctx, func(txCtx context.Context) error {
		if _, err := r.GetByID(txCtx, card.ID()); err == nil {
			return fmt.Errorf("create job card %s: id already stored", card.ID())
		}
		return r.store.Insert(txCtx, card.BillNumber(), card)
	})
	if err != nil {
		if errors.Is(err, sequence.ErrDuplicate) {
			return jobcard.JobCard{}, errors.Join(jobcard.ErrBillNumberTaken, err)
		}
		return jobcard.JobCard{}, err
	}
	return card, nil
}

func (r *InmemJobCardRepository) Update(ctx context.Context, card jobcard.JobCard) (jobcard.JobCard, error) {
	err := r.store.InTx(ctx, func(txCtx context.Context) error {
		existing, err := r.GetByID(txCtx, card.ID())
		if err != nil {
			return err
		}
		if card.BillNumber() != existing.BillNumber() {
			return jobcard.ErrBillNumberImmutable
		}
		return r.store.Replace(txCtx, existing.BillNumber(), card)
	})
	if err != nil {
		return jobcard.JobCard{}, err
	}
	return card, nil
}

func (r *InmemJobCardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.InTx(ctx, func(txCtx context.Context) error {
		existing, err := r.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		_, err = r.store.Delete(txCtx, existing.BillNumber())
		return err
	})
}
