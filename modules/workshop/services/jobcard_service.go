package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/pkg/eventbus"
	"github.com/iota-uz/garage/pkg/sequence"
)

// TxRunner opens the store scope that repositories and the assigner join.
type TxRunner interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}

// JobCardService runs the job card lifecycle. New cards get their bill
// number inside the transaction that inserts them.
type JobCardService struct {
	repo      jobcard.Repository
	tx        TxRunner
	assigner  *sequence.Assigner
	publisher eventbus.EventBus
	logger    *logrus.Entry
	prefix    string
	now       func() time.Time
}

type JobCardServiceOption func(*JobCardService)

func WithBillPrefix(prefix string) JobCardServiceOption {
	return func(s *JobCardService) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithClock(now func() time.Time) JobCardServiceOption {
	return func(s *JobCardService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *logrus.Entry) JobCardServiceOption {
	return func(s *JobCardService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewJobCardService(
	repo jobcard.Repository,
	tx TxRunner,
	assigner *sequence.Assigner,
	publisher eventbus.EventBus,
	opts ...JobCardServiceOption,
) *JobCardService {
	s := &JobCardService{
		repo:      repo,
		tx:        tx,
		assigner:  assigner,
		publisher: publisher,
		logger:    nopLogger(),
		prefix:    jobcard.BillPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *JobCardService) GetByID(ctx context.Context, id uuid.UUID) (jobcard.JobCard, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *JobCardService) GetByBillNumber(ctx context.Context, billNumber string) (jobcard.JobCard, error) {
	return s.repo.GetByBillNumber(ctx, billNumber)
}

// ListActive returns cards still in the workshop, oldest admission first.
func (s *JobCardService) ListActive(ctx context.Context) ([]jobcard.JobCard, error) {
	delivered := false
	return s.repo.Find(ctx, &jobcard.FindParams{
		Delivered: &delivered,
		SortBy:    jobcard.SortAdmittedDate,
	})
}

// ListDelivered returns delivered cards, most recently updated first.
func (s *JobCardService) ListDelivered(ctx context.Context, limit int) ([]jobcard.JobCard, error) {
	delivered := true
	return s.repo.Find(ctx, &jobcard.FindParams{
		Delivered:  &delivered,
		SortBy:     jobcard.SortUpdatedAt,
		Descending: true,
		Limit:      limit,
	})
}

// ListByRegistration is the visit history of one vehicle, latest first.
func (s *JobCardService) ListByRegistration(ctx context.Context, registration string) ([]jobcard.JobCard, error) {
	return s.repo.Find(ctx, &jobcard.FindParams{
		RegistrationNumber: registration,
		SortBy:             jobcard.SortAdmittedDate,
		Descending:         true,
	})
}

// CountDeliveredOn counts cards delivered during the calendar day of day, in
// day's location.
func (s *JobCardService) CountDeliveredOn(ctx context.Context, day time.Time) (int64, error) {
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return s.repo.CountDeliveredBetween(ctx, from, from.AddDate(0, 0, 1))
}

func (s *JobCardService) Create(ctx context.Context, dto *jobcard.CreateDTO) (jobcard.JobCard, error) {
	if err := dto.Validate(); err != nil {
		return jobcard.JobCard{}, err
	}
	now := s.now()
	card, err := dto.ToEntity(now)
	if err != nil {
		return jobcard.JobCard{}, err
	}

	var created jobcard.JobCard
	_, err = s.assigner.WithNext(ctx, s.prefix, card.Partition(), func(txCtx context.Context, billNumber string) error {
		numbered, err := card.AssignBillNumber(billNumber)
		if err != nil {
			return err
		}
		created, err = s.repo.Create(txCtx, numbered)
		return err
	})
	if err != nil {
		s.logger.WithError(err).WithField("registration_number", card.Vehicle().RegistrationNumber).
			Error("jobcard: create failed")
		return jobcard.JobCard{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":          created.ID(),
		"bill_number": created.BillNumber(),
	}).Info("jobcard: created")
	s.publisher.Publish(jobcard.CreatedEvent{Result: created, OccurredAt: now})
	return created, nil
}

// Update edits a stored card. The bill number is kept, even when the new
// admission date falls in another year.
func (s *JobCardService) Update(ctx context.Context, id uuid.UUID, dto *jobcard.UpdateDTO) (jobcard.JobCard, error) {
	if err := dto.Validate(); err != nil {
		return jobcard.JobCard{}, err
	}
	rev, err := dto.ToRevision()
	if err != nil {
		return jobcard.JobCard{}, err
	}
	now := s.now()
	updated, err := s.modify(ctx, id, func(card jobcard.JobCard) (jobcard.JobCard, error) {
		return card.Revise(rev, now)
	})
	if err != nil {
		return jobcard.JobCard{}, err
	}
	s.publisher.Publish(jobcard.UpdatedEvent{Result: updated, OccurredAt: now})
	return updated, nil
}

func (s *JobCardService) MarkDelivered(ctx context.Context, id uuid.UUID) (jobcard.JobCard, error) {
	now := s.now()
	updated, err := s.modify(ctx, id, func(card jobcard.JobCard) (jobcard.JobCard, error) {
		return card.MarkDelivered(now)
	})
	if err != nil {
		return jobcard.JobCard{}, err
	}
	s.publisher.Publish(jobcard.DeliveredEvent{Result: updated, OccurredAt: now})
	return updated, nil
}

func (s *JobCardService) UndoDelivered(ctx context.Context, id uuid.UUID) (jobcard.JobCard, error) {
	now := s.now()
	updated, err := s.modify(ctx, id, func(card jobcard.JobCard) (jobcard.JobCard, error) {
		return card.UndoDelivered(now)
	})
	if err != nil {
		return jobcard.JobCard{}, err
	}
	s.publisher.Publish(jobcard.DeliveredEvent{Result: updated, Undone: true, OccurredAt: now})
	return updated, nil
}

func (s *JobCardService) ToggleHold(ctx context.Context, id uuid.UUID) (jobcard.JobCard, error) {
	now := s.now()
	updated, err := s.modify(ctx, id, func(card jobcard.JobCard) (jobcard.JobCard, error) {
		return card.ToggleHold(now), nil
	})
	if err != nil {
		return jobcard.JobCard{}, err
	}
	s.publisher.Publish(jobcard.UpdatedEvent{Result: updated, OccurredAt: now})
	return updated, nil
}

// Delete removes a card. Its bill number is not reused: the next card of the
// year still follows the greatest surviving number.
func (s *JobCardService) Delete(ctx context.Context, id uuid.UUID) (jobcard.JobCard, error) {
	var deleted jobcard.JobCard
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		card, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		deleted = card
		return nil
	})
	if err != nil {
		return jobcard.JobCard{}, err
	}
	s.logger.WithField("bill_number", deleted.BillNumber()).Info("jobcard: deleted")
	s.publisher.Publish(jobcard.DeletedEvent{Result: deleted, OccurredAt: s.now()})
	return deleted, nil
}

func (s *JobCardService) modify(
	ctx context.Context,
	id uuid.UUID,
	fn func(jobcard.JobCard) (jobcard.JobCard, error),
) (jobcard.JobCard, error) {
	var updated jobcard.JobCard
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		card, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		changed, err := fn(card)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, changed)
		return err
	})
	return updated, err
}

func nopLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
