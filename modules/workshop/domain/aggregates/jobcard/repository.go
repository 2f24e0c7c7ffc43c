package jobcard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SortField string

const (
	SortAdmittedDate SortField = "admitted_date"
	SortUpdatedAt    SortField = "updated_at"
)

type FindParams struct {
	Delivered          *bool
	RegistrationNumber string
	SortBy             SortField
	Descending         bool
	Limit              int
	Offset             int
}

// Repository persists job cards with their children. Create, Update and
// Delete run in the transaction carried by ctx when there is one.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (JobCard, error)
	GetByBillNumber(ctx context.Context, billNumber string) (JobCard, error)
	Find(ctx context.Context, params *FindParams) ([]JobCard, error)
	CountDeliveredBetween(ctx context.Context, from, to time.Time) (int64, error)
	Create(ctx context.Context, card JobCard) (JobCard, error)
	Update(ctx context.Context, card JobCard) (JobCard, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
