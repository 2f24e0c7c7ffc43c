package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/domain/entities/invoice"
	"github.com/iota-uz/garage/pkg/constants"
)

const invoiceSheet = "Invoice"

type InvoiceService struct {
	repo     jobcard.Repository
	currency string
	shopName string
	now      func() time.Time
}

func NewInvoiceService(repo jobcard.Repository, currency, shopName string) *InvoiceService {
	return &InvoiceService{repo: repo, currency: currency, shopName: shopName, now: time.Now}
}

func (s *InvoiceService) Build(ctx context.Context, id uuid.UUID) (invoice.Invoice, error) {
	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return invoice.Invoice{}, err
	}
	return invoice.FromJobCard(card, s.currency, s.now()), nil
}

// FileName is the suggested name of the exported workbook.
func FileName(inv invoice.Invoice) string {
	return fmt.Sprintf("invoice-%s.xlsx", inv.BillNumber)
}

// ExportXLSX writes the invoice of card id as an Excel workbook to w.
func (s *InvoiceService) ExportXLSX(ctx context.Context, id uuid.UUID, w io.Writer) (invoice.Invoice, error) {
	inv, err := s.Build(ctx, id)
	if err != nil {
		return invoice.Invoice{}, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return invoice.Invoice{}, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return invoice.Invoice{}, err
	}

	sw := &sheetWriter{f: f, sheet: invoiceSheet, bold: bold}
	sw.row(true, s.shopName)
	sw.row(false, "Bill No", inv.BillNumber)
	sw.row(false, "Admitted", inv.AdmittedDate.Format(constants.DateLayout))
	if inv.DischargedDate != nil {
		sw.row(false, "Discharged", inv.DischargedDate.Format(constants.DateLayout))
	}
	sw.row(false, "Issued", inv.IssuedAt.Format(constants.DateLayout))
	sw.row(false, "Customer", inv.CustomerName, inv.CustomerContact)
	sw.row(false, "Vehicle", inv.Vehicle, inv.RegistrationNumber)
	if inv.Mileage != "" {
		sw.row(false, "Mileage", inv.Mileage)
	}
	sw.skip()

	sw.row(true, "Spare part", "Status", "Quantity", "Unit price", "Total")
	for _, l := range inv.Spares {
		sw.row(false, l.Name, string(l.Status), l.Quantity.InexactFloat64(), l.UnitPrice.InexactFloat64(), l.Total.InexactFloat64())
	}
	sw.row(true, "Spares total", "", "", "", invoice.Display(inv.SparesTotal, inv.Currency))
	sw.skip()

	sw.row(true, "Labour", "", "", "", "Amount")
	for _, l := range inv.Labours {
		sw.row(false, l.Description, "", "", "", l.Amount.InexactFloat64())
	}
	sw.row(true, "Labour total", "", "", "", invoice.Display(inv.LabourTotal, inv.Currency))
	sw.skip()
	sw.row(true, "Grand total", "", "", "", invoice.Display(inv.GrandTotal, inv.Currency))

	if sw.err != nil {
		return invoice.Invoice{}, sw.err
	}
	if err := f.SetColWidth(invoiceSheet, "A", "A", 32); err != nil {
		return invoice.Invoice{}, err
	}
	if err := f.SetColWidth(invoiceSheet, "B", "E", 16); err != nil {
		return invoice.Invoice{}, err
	}
	if err := f.Write(w); err != nil {
		return invoice.Invoice{}, fmt.Errorf("write invoice workbook: %w", err)
	}
	return inv, nil
}

// sheetWriter appends rows to a sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	bold  int
	next  int
	err   error
}

func (w *sheetWriter) skip() { w.next++ }

func (w *sheetWriter) row(bold bool, values ...any) {
	if w.err != nil {
		return
	}
	w.next++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.next)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
	if bold && len(values) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, w.next)
		last, _ := excelize.CoordinatesToCellName(len(values), w.next)
		w.err = w.f.SetCellStyle(w.sheet, first, last, w.bold)
	}
}
