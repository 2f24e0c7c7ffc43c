package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
)

var stdout io.Writer = os.Stdout

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

type concernView struct {
	ID     string `json:"id"`
	Text   string `json:"concern_text"`
	Status string `json:"status"`
}

type spareView struct {
	ID           string           `json:"id"`
	PartName     string           `json:"spare_part_name"`
	Status       string           `json:"status"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice   decimal.Decimal  `json:"total_price"`
	OrderedDate  string           `json:"ordered_date,omitempty"`
	ReceivedDate string           `json:"received_date,omitempty"`
}

type labourView struct {
	ID          string          `json:"id"`
	Description string          `json:"job_description"`
	Amount      decimal.Decimal `json:"amount"`
}

type jobCardView struct {
	ID                 string        `json:"id"`
	BillNumber         string        `json:"bill_number"`
	AdmittedDate       string        `json:"admitted_date"`
	DischargedDate     string        `json:"discharged_date,omitempty"`
	BrandName          string        `json:"brand_name"`
	ModelName          string        `json:"model_name"`
	RegistrationNumber string        `json:"registration_number"`
	Mileage            string        `json:"mileage,omitempty"`
	CustomerName       string        `json:"customer_name,omitempty"`
	CustomerContact    string        `json:"customer_contact,omitempty"`
	Delivered          bool          `json:"delivered"`
	OnHold             bool          `json:"on_hold"`
	Concerns           []concernView `json:"concerns"`
	Spares             []spareView   `json:"spares"`
	Labours            []labourView  `json:"labours"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func toJobCardView(card jobcard.JobCard) jobCardView {
	admitted := card.AdmittedDate()
	v, c := card.Vehicle(), card.Customer()
	view := jobCardView{
		ID:                 card.ID().String(),
		BillNumber:         card.BillNumber(),
		AdmittedDate:       formatDate(&admitted),
		DischargedDate:     formatDate(card.DischargedDate()),
		BrandName:          v.BrandName,
		ModelName:          v.ModelName,
		RegistrationNumber: v.RegistrationNumber,
		Mileage:            v.Mileage,
		CustomerName:       c.Name,
		CustomerContact:    c.Contact,
		Delivered:          card.Delivered(),
		OnHold:             card.OnHold(),
		Concerns:           []concernView{},
		Spares:             []spareView{},
		Labours:            []labourView{},
		UpdatedAt:          card.UpdatedAt(),
	}
	for _, it := range card.Concerns() {
		view.Concerns = append(view.Concerns, concernView{ID: it.ID.String(), Text: it.Text, Status: string(it.Status)})
	}
	for _, it := range card.Spares() {
		view.Spares = append(view.Spares, spareView{
			ID:           it.ID.String(),
			PartName:     it.PartName,
			Status:       string(it.Status),
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   it.EffectiveTotal(),
			OrderedDate:  formatDate(it.OrderedDate),
			ReceivedDate: formatDate(it.ReceivedDate),
		})
	}
	for _, it := range card.Labours() {
		view.Labours = append(view.Labours, labourView{ID: it.ID.String(), Description: it.Description, Amount: it.EffectiveAmount()})
	}
	return view
}

type jobCardRow struct {
	ID                 string `json:"id"`
	BillNumber         string `json:"bill_number"`
	AdmittedDate       string `json:"admitted_date"`
	RegistrationNumber string `json:"registration_number"`
	Delivered          bool   `json:"delivered"`
	OnHold             bool   `json:"on_hold"`
}

func toJobCardRows(cards []jobcard.JobCard) []jobCardRow {
	rows := make([]jobCardRow, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, jobCardRow{
			ID:                 card.ID().String(),
			BillNumber:         card.BillNumber(),
			AdmittedDate:       card.AdmittedDate().Format(time.DateOnly),
			RegistrationNumber: card.Vehicle().RegistrationNumber,
			Delivered:          card.Delivered(),
			OnHold:             card.OnHold(),
		})
	}
	return rows
}
