package persistence

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
	"github.com/iota-uz/garage/modules/workshop/infrastructure/persistence/models"
	"github.com/iota-uz/garage/pkg/mapping"
)

func toDBJobCard(card jobcard.JobCard) *models.JobCard {
	v := card.Vehicle()
	c := card.Customer()
	return &models.JobCard{
		ID:                 card.ID().String(),
		BillNumber:         mapping.ValueToSQLNullString(card.BillNumber()),
		AdmittedDate:       card.AdmittedDate(),
		DischargedDate:     mapping.PointerToSQLNullTime(card.DischargedDate()),
		Delivered:          card.Delivered(),
		OnHold:             card.OnHold(),
		BrandName:          v.BrandName,
		ModelName:          v.ModelName,
		RegistrationNumber: v.RegistrationNumber,
		Mileage:            mapping.ValueToSQLNullString(v.Mileage),
		CustomerName:       mapping.ValueToSQLNullString(c.Name),
		CustomerContact:    mapping.ValueToSQLNullString(c.Contact),
		CreatedAt:          card.CreatedAt(),
		UpdatedAt:          card.UpdatedAt(),
	}
}

func toDBConcerns(card jobcard.JobCard) []*models.JobCardConcern {
	out := make([]*models.JobCardConcern, 0, len(card.Concerns()))
	for i, c := range card.Concerns() {
		out = append(out, &models.JobCardConcern{
			ID:          c.ID.String(),
			JobCardID:   card.ID().String(),
			Position:    i,
			ConcernText: c.Text,
			Status:      string(c.Status),
		})
	}
	return out
}

func toDBSpares(card jobcard.JobCard) []*models.JobCardSpare {
	out := make([]*models.JobCardSpare, 0, len(card.Spares()))
	for i, s := range card.Spares() {
		out = append(out, &models.JobCardSpare{
			ID:            s.ID.String(),
			JobCardID:     card.ID().String(),
			Position:      i,
			SparePartName: mapping.ValueToSQLNullString(s.PartName),
			Status:        string(s.Status),
			Quantity:      mapping.PointerToNullDecimal(s.Quantity),
			UnitPrice:     mapping.PointerToNullDecimal(s.UnitPrice),
			TotalPrice:    mapping.PointerToNullDecimal(s.TotalPrice),
			OrderedDate:   mapping.PointerToSQLNullTime(s.OrderedDate),
			ReceivedDate:  mapping.PointerToSQLNullTime(s.ReceivedDate),
		})
	}
	return out
}

func toDBLabours(card jobcard.JobCard) []*models.JobCardLabour {
	out := make([]*models.JobCardLabour, 0, len(card.Labours()))
	for i, l := range card.Labours() {
		out = append(out, &models.JobCardLabour{
			ID:             l.ID.String(),
			JobCardID:      card.ID().String(),
			Position:       i,
			JobDescription: l.Description,
			Amount:         mapping.PointerToNullDecimal(l.Amount),
		})
	}
	return out
}

// toDomainJobCard assembles a card from its row and child rows. Children
// must already be in position order.
func toDomainJobCard(
	row *models.JobCard,
	concerns []*models.JobCardConcern,
	spares []*models.JobCardSpare,
	labours []*models.JobCardLabour,
) (jobcard.JobCard, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return jobcard.JobCard{}, errors.Wrap(err, "parse job card id")
	}

	domainConcerns := make([]jobcard.Concern, 0, len(concerns))
	for _, c := range concerns {
		cid, err := uuid.Parse(c.ID)
		if err != nil {
			return jobcard.JobCard{}, errors.Wrap(err, "parse concern id")
		}
		status, err := jobcard.ParseConcernStatus(c.Status)
		if err != nil {
			return jobcard.JobCard{}, err
		}
		domainConcerns = append(domainConcerns, jobcard.Concern{ID: cid, Text: c.ConcernText, Status: status})
	}

	domainSpares := make([]jobcard.SpareItem, 0, len(spares))
	for _, s := range spares {
		sid, err := uuid.Parse(s.ID)
		if err != nil {
			return jobcard.JobCard{}, errors.Wrap(err, "parse spare id")
		}
		status, err := jobcard.ParseSpareStatus(s.Status)
		if err != nil {
			return jobcard.JobCard{}, err
		}
		domainSpares = append(domainSpares, jobcard.SpareItem{
			ID:           sid,
			PartName:     s.SparePartName.String,
			Status:       status,
			Quantity:     mapping.NullDecimalToPointer(s.Quantity),
			UnitPrice:    mapping.NullDecimalToPointer(s.UnitPrice),
			TotalPrice:   mapping.NullDecimalToPointer(s.TotalPrice),
			OrderedDate:  mapping.SQLNullTimeToPointer(s.OrderedDate),
			ReceivedDate: mapping.SQLNullTimeToPointer(s.ReceivedDate),
		})
	}

	domainLabours := make([]jobcard.LabourItem, 0, len(labours))
	for _, l := range labours {
		lid, err := uuid.Parse(l.ID)
		if err != nil {
			return jobcard.JobCard{}, errors.Wrap(err, "parse labour id")
		}
		domainLabours = append(domainLabours, jobcard.LabourItem{
			ID:          lid,
			Description: l.JobDescription,
			Amount:      mapping.NullDecimalToPointer(l.Amount),
		})
	}

	return jobcard.New(
		row.AdmittedDate,
		jobcard.Vehicle{
			BrandName:          row.BrandName,
			ModelName:          row.ModelName,
			RegistrationNumber: row.RegistrationNumber,
			Mileage:            row.Mileage.String,
		},
		jobcard.WithID(id),
		jobcard.WithBillNumber(row.BillNumber.String),
		jobcard.WithDischargedDate(mapping.SQLNullTimeToPointer(row.DischargedDate)),
		jobcard.WithDelivered(row.Delivered),
		jobcard.WithOnHold(row.OnHold),
		jobcard.WithCustomer(jobcard.Customer{Name: row.CustomerName.String, Contact: row.CustomerContact.String}),
		jobcard.WithConcerns(domainConcerns),
		jobcard.WithSpares(domainSpares),
		jobcard.WithLabours(domainLabours),
		jobcard.WithTimestamps(row.CreatedAt, row.UpdatedAt),
	), nil
}

func toDomainCarBrand(row *models.CarBrand) (catalog.CarBrand, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return catalog.CarBrand{}, errors.Wrap(err, "parse brand id")
	}
	return catalog.CarBrand{ID: id, Name: row.Name, LogoPath: row.LogoPath.String, CreatedAt: row.CreatedAt}, nil
}

func toDomainCarModel(row *models.CarModel) (catalog.CarModel, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return catalog.CarModel{}, errors.Wrap(err, "parse model id")
	}
	brandID, err := uuid.Parse(row.BrandID)
	if err != nil {
		return catalog.CarModel{}, errors.Wrap(err, "parse brand id")
	}
	return catalog.CarModel{
		ID:         id,
		BrandID:    brandID,
		BrandName:  row.BrandName,
		Name:       row.Name,
		SamplePath: row.SamplePath.String,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func toDomainSparePart(row *models.SparePart) (catalog.SparePart, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return catalog.SparePart{}, errors.Wrap(err, "parse spare part id")
	}
	return catalog.SparePart{ID: id, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

func toDomainConcernSolution(row *models.ConcernSolution) (catalog.ConcernSolution, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return catalog.ConcernSolution{}, errors.Wrap(err, "parse concern solution id")
	}
	return catalog.ConcernSolution{ID: id, Concern: row.Concern, Solution: row.Solution, CreatedAt: row.CreatedAt}, nil
}
