package jobcard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/garage/pkg/constants"
)

type ConcernDTO struct {
	Text   string `json:"concern_text" validate:"required,max=2000"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING WORKING FIXED"`
}

type SpareDTO struct {
	ID           string `json:"id" validate:"omitempty,uuid"`
	PartName     string `json:"spare_part_name" validate:"max=100"`
	Status       string `json:"status" validate:"omitempty,oneof=PENDING ORDERED FIXED RECEIVED"`
	Quantity     string `json:"quantity" validate:"omitempty,numeric"`
	UnitPrice    string `json:"unit_price" validate:"omitempty,numeric"`
	TotalPrice   string `json:"total_price" validate:"omitempty,numeric"`
	OrderedDate  string `json:"ordered_date" validate:"omitempty,datetime=2006-01-02"`
	ReceivedDate string `json:"received_date" validate:"omitempty,datetime=2006-01-02"`
}

type LabourDTO struct {
	Description string `json:"job_description" validate:"required,max=150"`
	Amount      string `json:"amount" validate:"omitempty,numeric"`
}

type CreateDTO struct {
	AdmittedDate       string       `json:"admitted_date" validate:"required,datetime=2006-01-02"`
	DischargedDate     string       `json:"discharged_date" validate:"omitempty,datetime=2006-01-02"`
	BrandName          string       `json:"brand_name" validate:"required,max=100"`
	ModelName          string       `json:"model_name" validate:"required,max=100"`
	RegistrationNumber string       `json:"registration_number" validate:"required,max=50"`
	Mileage            string       `json:"mileage" validate:"max=20"`
	CustomerName       string       `json:"customer_name" validate:"max=150"`
	CustomerContact    string       `json:"customer_contact" validate:"max=20"`
	Concerns           []ConcernDTO `json:"concerns" validate:"dive"`
	Spares             []SpareDTO   `json:"spares" validate:"dive"`
	Labours            []LabourDTO  `json:"labours" validate:"dive"`
}

// UpdateDTO edits a stored card. It has no bill number field: the number is
// never changed through an update.
type UpdateDTO struct {
	CreateDTO
	ForceStatus bool `json:"force_status"`
}

func (d *CreateDTO) Normalize() {
	trim := func(p *string) { *p = strings.TrimSpace(*p) }
	for _, p := range []*string{
		&d.AdmittedDate, &d.DischargedDate, &d.BrandName, &d.ModelName,
		&d.RegistrationNumber, &d.Mileage, &d.CustomerName, &d.CustomerContact,
	} {
		trim(p)
	}
	for i := range d.Concerns {
		trim(&d.Concerns[i].Text)
		d.Concerns[i].Status = strings.ToUpper(strings.TrimSpace(d.Concerns[i].Status))
	}
	for i := range d.Spares {
		s := &d.Spares[i]
		for _, p := range []*string{&s.ID, &s.PartName, &s.Quantity, &s.UnitPrice, &s.TotalPrice, &s.OrderedDate, &s.ReceivedDate} {
			trim(p)
		}
		s.Status = strings.ToUpper(strings.TrimSpace(s.Status))
	}
	for i := range d.Labours {
		trim(&d.Labours[i].Description)
		trim(&d.Labours[i].Amount)
	}
	d.dropBlankRows()
}

// dropBlankRows removes child rows the user left completely empty.
func (d *CreateDTO) dropBlankRows() {
	concerns := d.Concerns[:0]
	for _, c := range d.Concerns {
		if c.Text != "" || c.Status != "" {
			concerns = append(concerns, c)
		}
	}
	d.Concerns = concerns

	spares := d.Spares[:0]
	for _, s := range d.Spares {
		if s != (SpareDTO{}) {
			spares = append(spares, s)
		}
	}
	d.Spares = spares

	labours := d.Labours[:0]
	for _, l := range d.Labours {
		if l != (LabourDTO{}) {
			labours = append(labours, l)
		}
	}
	d.Labours = labours
}

// Validate normalizes d and checks it. Failures are returned as a
// *ValidationError.
func (d *CreateDTO) Validate() error {
	d.Normalize()

	fields := map[string]string{}
	if err := constants.Validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fieldPath(fe)] = message(fe)
		}
	}

	if _, ok := fields["AdmittedDate"]; !ok && d.DischargedDate != "" {
		if _, ok := fields["DischargedDate"]; !ok && d.DischargedDate < d.AdmittedDate {
			fields["DischargedDate"] = "must not be before the admitted date"
		}
	}
	for i, s := range d.Spares {
		for name, v := range map[string]string{"Quantity": s.Quantity, "UnitPrice": s.UnitPrice, "TotalPrice": s.TotalPrice} {
			if strings.HasPrefix(v, "-") {
				fields[fmt.Sprintf("Spares[%d].%s", i, name)] = "must not be negative"
			}
		}
	}
	for i, l := range d.Labours {
		if strings.HasPrefix(l.Amount, "-") {
			fields[fmt.Sprintf("Labours[%d].Amount", i)] = "must not be negative"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "numeric":
		return "must be a number"
	case "uuid":
		return "must be a UUID"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// ToEntity builds a new card. The bill number is left empty; it is assigned
// when the card is stored.
func (d *CreateDTO) ToEntity(now time.Time) (JobCard, error) {
	rev, err := d.revision(false)
	if err != nil {
		return JobCard{}, err
	}

	spares := make([]SpareItem, 0, len(rev.Spares))
	for _, s := range rev.Spares {
		target := s.Status
		if target == "" {
			target = SparePending
		}
		s.Status = SparePending
		moved, err := s.Transition(target, now, false)
		if err != nil {
			return JobCard{}, err
		}
		spares = append(spares, moved)
	}

	return New(
		rev.AdmittedDate,
		rev.Vehicle,
		WithDischargedDate(rev.DischargedDate),
		WithCustomer(rev.Customer),
		WithConcerns(rev.Concerns),
		WithSpares(spares),
		WithLabours(rev.Labours),
		WithTimestamps(now, now),
	), nil
}

func (d *UpdateDTO) ToRevision() (Revision, error) {
	return d.revision(d.ForceStatus)
}

func (d *CreateDTO) revision(force bool) (Revision, error) {
	admitted, err := time.Parse(constants.DateLayout, d.AdmittedDate)
	if err != nil {
		return Revision{}, fmt.Errorf("admitted date: %w", err)
	}
	discharged, err := parseOptionalDate(d.DischargedDate)
	if err != nil {
		return Revision{}, fmt.Errorf("discharged date: %w", err)
	}

	rev := Revision{
		AdmittedDate:   admitted,
		DischargedDate: discharged,
		Vehicle: Vehicle{
			BrandName:          d.BrandName,
			ModelName:          d.ModelName,
			RegistrationNumber: d.RegistrationNumber,
			Mileage:            d.Mileage,
		},
		Customer:    Customer{Name: d.CustomerName, Contact: d.CustomerContact},
		ForceStatus: force,
	}

	for _, c := range d.Concerns {
		status, err := ParseConcernStatus(c.Status)
		if err != nil {
			return Revision{}, err
		}
		rev.Concerns = append(rev.Concerns, Concern{Text: c.Text, Status: status})
	}

	for i, s := range d.Spares {
		item, err := s.toItem()
		if err != nil {
			return Revision{}, fmt.Errorf("spare %d: %w", i, err)
		}
		rev.Spares = append(rev.Spares, item)
	}

	for i, l := range d.Labours {
		amount, err := parseOptionalDecimal(l.Amount)
		if err != nil {
			return Revision{}, fmt.Errorf("labour %d: %w", i, err)
		}
		rev.Labours = append(rev.Labours, LabourItem{Description: l.Description, Amount: amount})
	}
	return rev, nil
}

func (s SpareDTO) toItem() (SpareItem, error) {
	var (
		item SpareItem
		err  error
	)
	if s.ID != "" {
		if item.ID, err = uuid.Parse(s.ID); err != nil {
			return SpareItem{}, err
		}
	}
	item.PartName = s.PartName
	if s.Status != "" {
		if item.Status, err = ParseSpareStatus(s.Status); err != nil {
			return SpareItem{}, err
		}
	}
	if item.Quantity, err = parseOptionalDecimal(s.Quantity); err != nil {
		return SpareItem{}, err
	}
	if item.UnitPrice, err = parseOptionalDecimal(s.UnitPrice); err != nil {
		return SpareItem{}, err
	}
	if item.TotalPrice, err = parseOptionalDecimal(s.TotalPrice); err != nil {
		return SpareItem{}, err
	}
	if item.OrderedDate, err = parseOptionalDate(s.OrderedDate); err != nil {
		return SpareItem{}, err
	}
	if item.ReceivedDate, err = parseOptionalDate(s.ReceivedDate); err != nil {
		return SpareItem{}, err
	}
	return item, nil
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(constants.DateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalDecimal(v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	d = d.Round(2)
	return &d, nil
}
