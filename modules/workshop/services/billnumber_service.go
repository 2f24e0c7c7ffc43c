package services

import (
	"context"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/pkg/sequence"
)

// BillNumberStore is a sequence store that can also list identifiers.
type BillNumberStore interface {
	sequence.Store
	IDs(ctx context.Context, key sequence.Key) ([]string, error)
}

type AuditReport struct {
	Key       sequence.Key
	Total     int
	Greatest  string
	Malformed []string
	// Next is the number the next card of the partition would receive.
	Next string
}

type BillNumberService struct {
	store    BillNumberStore
	assigner *sequence.Assigner
	prefix   string
}

func NewBillNumberService(store BillNumberStore, assigner *sequence.Assigner, prefix string) *BillNumberService {
	if prefix == "" {
		prefix = jobcard.BillPrefix
	}
	return &BillNumberService{store: store, assigner: assigner, prefix: prefix}
}

func (s *BillNumberService) key(year int) sequence.Key {
	return sequence.Key{Prefix: s.prefix, Partition: sequence.PartitionForYear(year)}
}

// Peek returns the bill number the next card admitted in year would get. It
// waits on the partition lock like a real assignment but writes nothing and
// leaves the assignment metrics alone.
func (s *BillNumberService) Peek(ctx context.Context, year int) (string, error) {
	key := s.key(year)
	var next string
	err := s.store.InTx(ctx, func(txCtx context.Context) error {
		id, err := s.assigner.Peek(txCtx, key.Prefix, key.Partition)
		if err != nil {
			return err
		}
		next = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// Audit lists the bill numbers of year whose suffix does not parse, so that
// legacy rows can be repaired. Greatest is the well-formed number assignment
// continues from.
func (s *BillNumberService) Audit(ctx context.Context, year int) (AuditReport, error) {
	key := s.key(year)
	ids, err := s.store.IDs(ctx, key)
	if err != nil {
		return AuditReport{}, err
	}
	report := AuditReport{Key: key, Total: len(ids)}
	var high int64
	for _, id := range ids {
		seq, err := key.SequenceOf(id)
		if err != nil {
			report.Malformed = append(report.Malformed, id)
			continue
		}
		if seq >= high {
			high, report.Greatest = seq, id
		}
	}
	next, err := s.Peek(ctx, year)
	if err != nil {
		return AuditReport{}, err
	}
	report.Next = next
	return report, nil
}
