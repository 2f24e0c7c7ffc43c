// Package invoice derives the bill of a job card. Invoices are computed on
// demand and never stored.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
)

type SpareLine struct {
	Name      string
	Status    jobcard.SpareStatus
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

type LabourLine struct {
	Description string
	Amount      decimal.Decimal
}

type Invoice struct {
	BillNumber         string
	AdmittedDate       time.Time
	DischargedDate     *time.Time
	CustomerName       string
	CustomerContact    string
	Vehicle            string
	RegistrationNumber string
	Mileage            string
	Currency           string
	Spares             []SpareLine
	Labours            []LabourLine
	SparesTotal        decimal.Decimal
	LabourTotal        decimal.Decimal
	GrandTotal         decimal.Decimal
	IssuedAt           time.Time
}

// FromJobCard totals card. Spare lines use the explicit total when present,
// otherwise quantity times unit price.
func FromJobCard(card jobcard.JobCard, currency string, issuedAt time.Time) Invoice {
	v := card.Vehicle()
	c := card.Customer()
	inv := Invoice{
		BillNumber:         card.BillNumber(),
		AdmittedDate:       card.AdmittedDate(),
		DischargedDate:     card.DischargedDate(),
		CustomerName:       c.Name,
		CustomerContact:    c.Contact,
		Vehicle:            v.BrandName + " " + v.ModelName,
		RegistrationNumber: v.RegistrationNumber,
		Mileage:            v.Mileage,
		Currency:           currency,
		SparesTotal:        decimal.Zero,
		LabourTotal:        decimal.Zero,
		IssuedAt:           issuedAt,
	}

	for _, s := range card.Spares() {
		line := SpareLine{
			Name:      s.PartName,
			Status:    s.Status,
			Quantity:  valueOrZero(s.Quantity),
			UnitPrice: valueOrZero(s.UnitPrice),
			Total:     s.EffectiveTotal(),
		}
		inv.Spares = append(inv.Spares, line)
		inv.SparesTotal = inv.SparesTotal.Add(line.Total)
	}
	for _, l := range card.Labours() {
		line := LabourLine{Description: l.Description, Amount: l.EffectiveAmount()}
		inv.Labours = append(inv.Labours, line)
		inv.LabourTotal = inv.LabourTotal.Add(line.Amount)
	}
	inv.GrandTotal = inv.SparesTotal.Add(inv.LabourTotal)
	return inv
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
