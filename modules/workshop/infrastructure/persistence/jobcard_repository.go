package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/infrastructure/persistence/models"
	"github.com/iota-uz/garage/pkg/composables"
)

const (
	jobcardFindQuery = `SELECT id, bill_number, admitted_date, discharged_date, delivered, on_hold,
		brand_name, model_name, registration_number, mileage, customer_name, customer_contact,
		created_at, updated_at
	FROM jobcards`

	jobcardConcernsQuery = `SELECT id, jobcard_id, position, concern_text, status
	FROM jobcard_concerns WHERE jobcard_id = ANY($1::uuid[]) ORDER BY jobcard_id, position`

	jobcardSparesQuery = `SELECT id, jobcard_id, position, spare_part_name, status, quantity, unit_price,
		total_price, ordered_date, received_date
	FROM jobcard_spares WHERE jobcard_id = ANY($1::uuid[]) ORDER BY jobcard_id, position`

	jobcardLaboursQuery = `SELECT id, jobcard_id, position, job_description, amount
	FROM jobcard_labours WHERE jobcard_id = ANY($1::uuid[]) ORDER BY jobcard_id, position`

	jobcardInsertQuery = `INSERT INTO jobcards (id, bill_number, admitted_date, discharged_date, delivered, on_hold,
		brand_name, model_name, registration_number, mileage, customer_name, customer_contact,
		created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	jobcardUpdateQuery = `UPDATE jobcards
	SET admitted_date = $1, discharged_date = $2, delivered = $3, on_hold = $4, brand_name = $5,
		model_name = $6, registration_number = $7, mileage = $8, customer_name = $9,
		customer_contact = $10, updated_at = $11
	WHERE id = $12`

	jobcardDeleteQuery = `DELETE FROM jobcards WHERE id = $1`

	jobcardCountDeliveredQuery = `SELECT COUNT(*) FROM jobcards
	WHERE delivered AND updated_at >= $1 AND updated_at < $2`

	concernInsertQuery = `INSERT INTO jobcard_concerns (id, jobcard_id, position, concern_text, status)
	VALUES ($1, $2, $3, $4, $5)`

	spareInsertQuery = `INSERT INTO jobcard_spares (id, jobcard_id, position, spare_part_name, status, quantity,
		unit_price, total_price, ordered_date, received_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	labourInsertQuery = `INSERT INTO jobcard_labours (id, jobcard_id, position, job_description, amount)
	VALUES ($1, $2, $3, $4, $5)`
)

var jobcardSortColumns = map[jobcard.SortField]string{
	jobcard.SortAdmittedDate: "admitted_date",
	jobcard.SortUpdatedAt:    "updated_at",
}

type JobCardRepository struct{}

func NewJobCardRepository() jobcard.Repository {
	return &JobCardRepository{}
}

func (r *JobCardRepository) GetByID(ctx context.Context, id uuid.UUID) (jobcard.JobCard, error) {
	cards, err := r.queryJobCards(ctx, jobcardFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return jobcard.JobCard{}, errors.Wrap(err, "failed to get job card by id")
	}
	if len(cards) == 0 {
		return jobcard.JobCard{}, jobcard.ErrNotFound
	}
	return cards[0], nil
}

func (r *JobCardRepository) GetByBillNumber(ctx context.Context, billNumber string) (jobcard.JobCard, error) {
	cards, err := r.queryJobCards(ctx, jobcardFindQuery+" WHERE bill_number = $1", billNumber)
	if err != nil {
		return jobcard.JobCard{}, errors.Wrap(err, "failed to get job card by bill number")
	}
	if len(cards) == 0 {
		return jobcard.JobCard{}, jobcard.ErrNotFound
	}
	return cards[0], nil
}

func (r *JobCardRepository) Find(ctx context.Context, params *jobcard.FindParams) ([]jobcard.JobCard, error) {
	if params == nil {
		params = &jobcard.FindParams{}
	}
	var (
		where []string
		args  []any
	)
	if params.Delivered != nil {
		args = append(args, *params.Delivered)
		where = append(where, fmt.Sprintf("delivered = $%d", len(args)))
	}
	if params.RegistrationNumber != "" {
		args = append(args, strings.ToUpper(strings.TrimSpace(params.RegistrationNumber)))
		where = append(where, fmt.Sprintf("registration_number = $%d", len(args)))
	}

	query := jobcardFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	column, ok := jobcardSortColumns[params.SortBy]
	if !ok {
		column = "admitted_date"
	}
	direction := "ASC"
	if params.Descending {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, created_at %s", column, direction, direction)

	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	cards, err := r.queryJobCards(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find job cards")
	}
	return cards, nil
}

func (r *JobCardRepository) CountDeliveredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var count int64
	if err := tx.QueryRow(ctx, jobcardCountDeliveredQuery, from, to).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count delivered job cards")
	}
	return count, nil
}

func (r *JobCardRepository) Create(ctx context.Context, card jobcard.JobCard) (jobcard.JobCard, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return jobcard.JobCard{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBJobCard(card)
	if _, err := tx.Exec(
		ctx,
		jobcardInsertQuery,
		row.ID,
		row.BillNumber,
		row.AdmittedDate,
		row.DischargedDate,
		row.Delivered,
		row.OnHold,
		row.BrandName,
		row.ModelName,
		row.RegistrationNumber,
		row.Mileage,
		row.CustomerName,
		row.CustomerContact,
		row.CreatedAt,
		row.UpdatedAt,
	); err != nil {
		return jobcard.JobCard{}, translateJobCardError(err)
	}

	if err := r.insertChildren(ctx, card); err != nil {
		return jobcard.JobCard{}, err
	}
	return r.GetByID(ctx, card.ID())
}

// Update rewrites the card row and replaces its children. The bill number
// column is never written here.
func (r *JobCardRepository) Update(ctx context.Context, card jobcard.JobCard) (jobcard.JobCard, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return jobcard.JobCard{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBJobCard(card)
	tag, err := tx.Exec(
		ctx,
		jobcardUpdateQuery,
		row.AdmittedDate,
		row.DischargedDate,
		row.Delivered,
		row.OnHold,
		row.BrandName,
		row.ModelName,
		row.RegistrationNumber,
		row.Mileage,
		row.CustomerName,
		row.CustomerContact,
		row.UpdatedAt,
		row.ID,
	)
	if err != nil {
		return jobcard.JobCard{}, translateJobCardError(err)
	}
	if tag.RowsAffected() == 0 {
		return jobcard.JobCard{}, jobcard.ErrNotFound
	}

	for _, table := range []string{"jobcard_concerns", "jobcard_spares", "jobcard_labours"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE jobcard_id = $1", row.ID); err != nil {
			return jobcard.JobCard{}, errors.Wrapf(err, "failed to clear %s", table)
		}
	}
	if err := r.insertChildren(ctx, card); err != nil {
		return jobcard.JobCard{}, err
	}
	return r.GetByID(ctx, card.ID())
}

func (r *JobCardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, jobcardDeleteQuery, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete job card")
	}
	if tag.RowsAffected() == 0 {
		return jobcard.ErrNotFound
	}
	return nil
}

func (r *JobCardRepository) insertChildren(ctx context.Context, card jobcard.JobCard) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	for _, c := range toDBConcerns(card) {
		if _, err := tx.Exec(ctx, concernInsertQuery, c.ID, c.JobCardID, c.Position, c.ConcernText, c.Status); err != nil {
			return errors.Wrap(err, "failed to insert concern")
		}
	}
	for _, s := range toDBSpares(card) {
		if _, err := tx.Exec(
			ctx,
			spareInsertQuery,
			s.ID,
			s.JobCardID,
			s.Position,
			s.SparePartName,
			s.Status,
			s.Quantity,
			s.UnitPrice,
			s.TotalPrice,
			s.OrderedDate,
			s.ReceivedDate,
		); err != nil {
			return errors.Wrap(err, "failed to insert spare")
		}
	}
	for _, l := range toDBLabours(card) {
		if _, err := tx.Exec(ctx, labourInsertQuery, l.ID, l.JobCardID, l.Position, l.JobDescription, l.Amount); err != nil {
			return errors.Wrap(err, "failed to insert labour")
		}
	}
	return nil
}

func (r *JobCardRepository) queryJobCards(ctx context.Context, query string, args ...any) ([]jobcard.JobCard, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var dbCards []*models.JobCard
	for rows.Next() {
		var c models.JobCard
		if err := rows.Scan(
			&c.ID,
			&c.BillNumber,
			&c.AdmittedDate,
			&c.DischargedDate,
			&c.Delivered,
			&c.OnHold,
			&c.BrandName,
			&c.ModelName,
			&c.RegistrationNumber,
			&c.Mileage,
			&c.CustomerName,
			&c.CustomerContact,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan job card row")
		}
		dbCards = append(dbCards, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	if len(dbCards) == 0 {
		return nil, nil
	}

	ids := make([]string, len(dbCards))
	for i, c := range dbCards {
		ids[i] = c.ID
	}
	concerns, err := r.queryConcerns(ctx, ids)
	if err != nil {
		return nil, err
	}
	spares, err := r.querySpares(ctx, ids)
	if err != nil {
		return nil, err
	}
	labours, err := r.queryLabours(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]jobcard.JobCard, 0, len(dbCards))
	for _, c := range dbCards {
		card, err := toDomainJobCard(c, concerns[c.ID], spares[c.ID], labours[c.ID])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (r *JobCardRepository) queryConcerns(ctx context.Context, ids []string) (map[string][]*models.JobCardConcern, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, jobcardConcernsQuery, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query concerns")
	}
	defer rows.Close()

	out := make(map[string][]*models.JobCardConcern)
	for rows.Next() {
		var c models.JobCardConcern
		if err := rows.Scan(&c.ID, &c.JobCardID, &c.Position, &c.ConcernText, &c.Status); err != nil {
			return nil, errors.Wrap(err, "failed to scan concern row")
		}
		out[c.JobCardID] = append(out[c.JobCardID], &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "concern iteration error")
	}
	return out, nil
}

func (r *JobCardRepository) querySpares(ctx context.Context, ids []string) (map[string][]*models.JobCardSpare, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, jobcardSparesQuery, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query spares")
	}
	defer rows.Close()

	out := make(map[string][]*models.JobCardSpare)
	for rows.Next() {
		var s models.JobCardSpare
		if err := rows.Scan(
			&s.ID,
			&s.JobCardID,
			&s.Position,
			&s.SparePartName,
			&s.Status,
			&s.Quantity,
			&s.UnitPrice,
			&s.TotalPrice,
			&s.OrderedDate,
			&s.ReceivedDate,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan spare row")
		}
		out[s.JobCardID] = append(out[s.JobCardID], &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "spare iteration error")
	}
	return out, nil
}

func (r *JobCardRepository) queryLabours(ctx context.Context, ids []string) (map[string][]*models.JobCardLabour, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, jobcardLaboursQuery, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query labours")
	}
	defer rows.Close()

	out := make(map[string][]*models.JobCardLabour)
	for rows.Next() {
		var l models.JobCardLabour
		if err := rows.Scan(&l.ID, &l.JobCardID, &l.Position, &l.JobDescription, &l.Amount); err != nil {
			return nil, errors.Wrap(err, "failed to scan labour row")
		}
		out[l.JobCardID] = append(out[l.JobCardID], &l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "labour iteration error")
	}
	return out, nil
}
