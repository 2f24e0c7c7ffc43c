package jobcard

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/garage/pkg/sequence"
)

// BillPrefix is the default prefix of job card bill numbers.
const BillPrefix = "JB"

type Vehicle struct {
	BrandName          string
	ModelName          string
	RegistrationNumber string
	Mileage            string
}

type Customer struct {
	Name    string
	Contact string
}

type Concern struct {
	ID     uuid.UUID
	Text   string
	Status ConcernStatus
}

type SpareItem struct {
	ID           uuid.UUID
	PartName     string
	Status       SpareStatus
	Quantity     *decimal.Decimal
	UnitPrice    *decimal.Decimal
	TotalPrice   *decimal.Decimal
	OrderedDate  *time.Time
	ReceivedDate *time.Time
}

// EffectiveTotal is the explicit total when set, otherwise quantity times
// unit price. Missing amounts count as zero.
func (it SpareItem) EffectiveTotal() decimal.Decimal {
	if it.TotalPrice != nil {
		return *it.TotalPrice
	}
	if it.Quantity == nil || it.UnitPrice == nil {
		return decimal.Zero
	}
	return it.Quantity.Mul(*it.UnitPrice).Round(2)
}

type LabourItem struct {
	ID          uuid.UUID
	Description string
	Amount      *decimal.Decimal
}

func (it LabourItem) EffectiveAmount() decimal.Decimal {
	if it.Amount == nil {
		return decimal.Zero
	}
	return *it.Amount
}

// JobCard is a vehicle's visit to the workshop. Its bill number is assigned
// once, when the card is first stored, and never changes afterwards.
type JobCard struct {
	id             uuid.UUID
	billNumber     string
	admittedDate   time.Time
	dischargedDate *time.Time
	delivered      bool
	onHold         bool
	vehicle        Vehicle
	customer       Customer
	concerns       []Concern
	spares         []SpareItem
	labours        []LabourItem
	createdAt      time.Time
	updatedAt      time.Time
}

type Option func(*JobCard)

func WithID(id uuid.UUID) Option {
	return func(j *JobCard) { j.id = id }
}

func WithBillNumber(billNumber string) Option {
	return func(j *JobCard) { j.billNumber = billNumber }
}

func WithDischargedDate(d *time.Time) Option {
	return func(j *JobCard) {
		if d == nil {
			j.dischargedDate = nil
			return
		}
		v := dateOnly(*d)
		j.dischargedDate = &v
	}
}

func WithDelivered(v bool) Option {
	return func(j *JobCard) { j.delivered = v }
}

func WithOnHold(v bool) Option {
	return func(j *JobCard) { j.onHold = v }
}

func WithCustomer(c Customer) Option {
	return func(j *JobCard) {
		j.customer = Customer{Name: strings.TrimSpace(c.Name), Contact: strings.TrimSpace(c.Contact)}
	}
}

func WithConcerns(items []Concern) Option {
	return func(j *JobCard) { j.concerns = withIDs(slices.Clone(items), concernID, setConcernID) }
}

func WithSpares(items []SpareItem) Option {
	return func(j *JobCard) { j.spares = withIDs(slices.Clone(items), spareID, setSpareID) }
}

func WithLabours(items []LabourItem) Option {
	return func(j *JobCard) { j.labours = withIDs(slices.Clone(items), labourID, setLabourID) }
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(j *JobCard) {
		j.createdAt = createdAt
		j.updatedAt = updatedAt
	}
}

func New(admittedDate time.Time, vehicle Vehicle, opts ...Option) JobCard {
	j := JobCard{
		id:           uuid.New(),
		admittedDate: dateOnly(admittedDate),
		vehicle:      normalizeVehicle(vehicle),
	}
	for _, opt := range opts {
		opt(&j)
	}
	return j
}

func (j JobCard) ID() uuid.UUID              { return j.id }
func (j JobCard) BillNumber() string         { return j.billNumber }
func (j JobCard) AdmittedDate() time.Time    { return j.admittedDate }
func (j JobCard) DischargedDate() *time.Time { return j.dischargedDate }
func (j JobCard) Delivered() bool            { return j.delivered }
func (j JobCard) OnHold() bool               { return j.onHold }
func (j JobCard) Vehicle() Vehicle           { return j.vehicle }
func (j JobCard) Customer() Customer         { return j.customer }
func (j JobCard) Concerns() []Concern        { return slices.Clone(j.concerns) }
func (j JobCard) Spares() []SpareItem        { return slices.Clone(j.spares) }
func (j JobCard) Labours() []LabourItem      { return slices.Clone(j.labours) }
func (j JobCard) CreatedAt() time.Time       { return j.createdAt }
func (j JobCard) UpdatedAt() time.Time       { return j.updatedAt }

// Partition is the two-digit admission year that scopes the bill number.
func (j JobCard) Partition() string {
	return sequence.PartitionForYear(j.admittedDate.Year())
}

// AssignBillNumber sets the bill number of a card that has none yet.
func (j JobCard) AssignBillNumber(billNumber string) (JobCard, error) {
	if j.billNumber != "" && j.billNumber != billNumber {
		return j, ErrBillNumberImmutable
	}
	j.billNumber = billNumber
	return j, nil
}

func (j JobCard) Stamp(at time.Time) JobCard {
	if j.createdAt.IsZero() {
		j.createdAt = at
	}
	j.updatedAt = at
	return j
}

func (j JobCard) MarkDelivered(at time.Time) (JobCard, error) {
	if j.delivered {
		return j, ErrAlreadyDelivered
	}
	j.delivered = true
	return j.Stamp(at), nil
}

func (j JobCard) UndoDelivered(at time.Time) (JobCard, error) {
	if !j.delivered {
		return j, ErrNotDelivered
	}
	j.delivered = false
	return j.Stamp(at), nil
}

func (j JobCard) ToggleHold(at time.Time) JobCard {
	j.onHold = !j.onHold
	return j.Stamp(at)
}

// Revision is the editable part of a job card.
type Revision struct {
	AdmittedDate   time.Time
	DischargedDate *time.Time
	Vehicle        Vehicle
	Customer       Customer
	Concerns       []Concern
	Spares         []SpareItem
	Labours        []LabourItem
	// ForceStatus allows spare items to move backwards.
	ForceStatus bool
}

// Revise applies r and replaces the children. Spares matched by ID to an
// existing item go through Transition from their stored status; new spares
// are moved forward from PENDING. The bill number and partition are kept even
// when the admission date changes year.
func (j JobCard) Revise(r Revision, at time.Time) (JobCard, error) {
	existing := make(map[uuid.UUID]SpareItem, len(j.spares))
	for _, s := range j.spares {
		existing[s.ID] = s
	}

	spares := make([]SpareItem, 0, len(r.Spares))
	for _, in := range r.Spares {
		base, ok := existing[in.ID]
		if !ok || in.ID == uuid.Nil {
			base = SpareItem{ID: in.ID, Status: SparePending}
		}
		target := in.Status
		if target == "" {
			target = base.Status
		}
		base.PartName = strings.TrimSpace(in.PartName)
		base.Quantity = in.Quantity
		base.UnitPrice = in.UnitPrice
		base.TotalPrice = in.TotalPrice
		if in.OrderedDate != nil {
			base.OrderedDate = in.OrderedDate
		}
		if in.ReceivedDate != nil {
			base.ReceivedDate = in.ReceivedDate
		}
		moved, err := base.Transition(target, at, r.ForceStatus)
		if err != nil {
			return j, err
		}
		spares = append(spares, moved)
	}

	j.admittedDate = dateOnly(r.AdmittedDate)
	WithDischargedDate(r.DischargedDate)(&j)
	j.vehicle = normalizeVehicle(r.Vehicle)
	WithCustomer(r.Customer)(&j)
	WithConcerns(r.Concerns)(&j)
	WithSpares(spares)(&j)
	WithLabours(r.Labours)(&j)
	return j.Stamp(at), nil
}

func normalizeVehicle(v Vehicle) Vehicle {
	return Vehicle{
		BrandName:          strings.TrimSpace(v.BrandName),
		ModelName:          strings.TrimSpace(v.ModelName),
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(v.RegistrationNumber)),
		Mileage:            strings.TrimSpace(v.Mileage),
	}
}

func concernID(c Concern) uuid.UUID        { return c.ID }
func setConcernID(c *Concern, id uuid.UUID) { c.ID = id }
func spareID(s SpareItem) uuid.UUID         { return s.ID }
func setSpareID(s *SpareItem, id uuid.UUID) { s.ID = id }
func labourID(l LabourItem) uuid.UUID       { return l.ID }
func setLabourID(l *LabourItem, id uuid.UUID) {
	l.ID = id
}

func withIDs[T any](items []T, get func(T) uuid.UUID, set func(*T, uuid.UUID)) []T {
	for i := range items {
		if get(items[i]) == uuid.Nil {
			set(&items[i], uuid.New())
		}
	}
	return items
}
