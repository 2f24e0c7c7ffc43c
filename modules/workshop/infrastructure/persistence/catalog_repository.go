package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
	"github.com/iota-uz/garage/modules/workshop/infrastructure/persistence/models"
	"github.com/iota-uz/garage/pkg/composables"
	"github.com/iota-uz/garage/pkg/mapping"
)

const (
	brandFindQuery = `SELECT id, name, logo_path, created_at FROM car_brands`

	modelFindQuery = `SELECT m.id, m.brand_id, b.name, m.name, m.sample_path, m.created_at
	FROM car_models m JOIN car_brands b ON b.id = m.brand_id`

	sparePartFindQuery = `SELECT id, name, created_at FROM spare_parts`

	concernSolutionFindQuery = `SELECT id, concern, solution, created_at FROM concern_solutions`
)

type CatalogRepository struct{}

func NewCatalogRepository() catalog.Repository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) CreateBrand(ctx context.Context, b catalog.CarBrand) (catalog.CarBrand, error) {
	err := r.exec(ctx,
		`INSERT INTO car_brands (id, name, logo_path, created_at) VALUES ($1, $2, $3, $4)`,
		b.ID.String(), b.Name, mapping.ValueToSQLNullString(b.LogoPath), b.CreatedAt,
	)
	if err != nil {
		return catalog.CarBrand{}, err
	}
	return r.GetBrand(ctx, b.ID)
}

func (r *CatalogRepository) UpdateBrand(ctx context.Context, b catalog.CarBrand) (catalog.CarBrand, error) {
	err := r.execOne(ctx,
		`UPDATE car_brands SET name = $1, logo_path = $2 WHERE id = $3`,
		b.Name, mapping.ValueToSQLNullString(b.LogoPath), b.ID.String(),
	)
	if err != nil {
		return catalog.CarBrand{}, err
	}
	return r.GetBrand(ctx, b.ID)
}

func (r *CatalogRepository) GetBrand(ctx context.Context, id uuid.UUID) (catalog.CarBrand, error) {
	brands, err := r.queryBrands(ctx, brandFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return catalog.CarBrand{}, err
	}
	if len(brands) == 0 {
		return catalog.CarBrand{}, catalog.ErrNotFound
	}
	return brands[0], nil
}

func (r *CatalogRepository) ListBrands(ctx context.Context) ([]catalog.CarBrand, error) {
	return r.queryBrands(ctx, brandFindQuery+" ORDER BY name")
}

func (r *CatalogRepository) CreateModel(ctx context.Context, m catalog.CarModel) (catalog.CarModel, error) {
	err := r.exec(ctx,
		`INSERT INTO car_models (id, brand_id, name, sample_path, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID.String(), m.BrandID.String(), m.Name, mapping.ValueToSQLNullString(m.SamplePath), m.CreatedAt,
	)
	if err != nil {
		return catalog.CarModel{}, err
	}
	return r.getModel(ctx, m.ID)
}

func (r *CatalogRepository) UpdateModel(ctx context.Context, m catalog.CarModel) (catalog.CarModel, error) {
	err := r.execOne(ctx,
		`UPDATE car_models SET brand_id = $1, name = $2, sample_path = $3 WHERE id = $4`,
		m.BrandID.String(), m.Name, mapping.ValueToSQLNullString(m.SamplePath), m.ID.String(),
	)
	if err != nil {
		return catalog.CarModel{}, err
	}
	return r.getModel(ctx, m.ID)
}

// ListModels lists every model, or only those of brandID when it is set.
func (r *CatalogRepository) ListModels(ctx context.Context, brandID uuid.UUID) ([]catalog.CarModel, error) {
	if brandID == uuid.Nil {
		return r.queryModels(ctx, modelFindQuery+" ORDER BY b.name, m.name")
	}
	return r.queryModels(ctx, modelFindQuery+" WHERE m.brand_id = $1 ORDER BY m.name", brandID.String())
}

func (r *CatalogRepository) getModel(ctx context.Context, id uuid.UUID) (catalog.CarModel, error) {
	found, err := r.queryModels(ctx, modelFindQuery+" WHERE m.id = $1", id.String())
	if err != nil {
		return catalog.CarModel{}, err
	}
	if len(found) == 0 {
		return catalog.CarModel{}, catalog.ErrNotFound
	}
	return found[0], nil
}

func (r *CatalogRepository) CreateSparePart(ctx context.Context, p catalog.SparePart) (catalog.SparePart, error) {
	err := r.exec(ctx,
		`INSERT INTO spare_parts (id, name, created_at) VALUES ($1, $2, $3)`,
		p.ID.String(), p.Name, p.CreatedAt,
	)
	if err != nil {
		return catalog.SparePart{}, err
	}
	return r.getSparePart(ctx, p.ID)
}

func (r *CatalogRepository) UpdateSparePart(ctx context.Context, p catalog.SparePart) (catalog.SparePart, error) {
	if err := r.execOne(ctx, `UPDATE spare_parts SET name = $1 WHERE id = $2`, p.Name, p.ID.String()); err != nil {
		return catalog.SparePart{}, err
	}
	return r.getSparePart(ctx, p.ID)
}

func (r *CatalogRepository) ListSpareParts(ctx context.Context) ([]catalog.SparePart, error) {
	return r.querySpareParts(ctx, sparePartFindQuery+" ORDER BY name")
}

func (r *CatalogRepository) getSparePart(ctx context.Context, id uuid.UUID) (catalog.SparePart, error) {
	parts, err := r.querySpareParts(ctx, sparePartFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return catalog.SparePart{}, err
	}
	if len(parts) == 0 {
		return catalog.SparePart{}, catalog.ErrNotFound
	}
	return parts[0], nil
}

func (r *CatalogRepository) CreateConcernSolution(ctx context.Context, c catalog.ConcernSolution) (catalog.ConcernSolution, error) {
	err := r.exec(ctx,
		`INSERT INTO concern_solutions (id, concern, solution, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID.String(), c.Concern, c.Solution, c.CreatedAt,
	)
	if err != nil {
		return catalog.ConcernSolution{}, err
	}
	return r.getConcernSolution(ctx, c.ID)
}

func (r *CatalogRepository) UpdateConcernSolution(ctx context.Context, c catalog.ConcernSolution) (catalog.ConcernSolution, error) {
	err := r.execOne(ctx,
		`UPDATE concern_solutions SET concern = $1, solution = $2 WHERE id = $3`,
		c.Concern, c.Solution, c.ID.String(),
	)
	if err != nil {
		return catalog.ConcernSolution{}, err
	}
	return r.getConcernSolution(ctx, c.ID)
}

func (r *CatalogRepository) ListConcernSolutions(ctx context.Context) ([]catalog.ConcernSolution, error) {
	return r.queryConcernSolutions(ctx, concernSolutionFindQuery+" ORDER BY concern")
}

func (r *CatalogRepository) getConcernSolution(ctx context.Context, id uuid.UUID) (catalog.ConcernSolution, error) {
	items, err := r.queryConcernSolutions(ctx, concernSolutionFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return catalog.ConcernSolution{}, err
	}
	if len(items) == 0 {
		return catalog.ConcernSolution{}, catalog.ErrNotFound
	}
	return items[0], nil
}

func (r *CatalogRepository) exec(ctx context.Context, query string, args ...any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	_, err = tx.Exec(ctx, query, args...)
	return translateCatalogError(err)
}

// execOne runs an update that must touch exactly one row.
func (r *CatalogRepository) execOne(ctx context.Context, query string, args ...any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return translateCatalogError(err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) queryBrands(ctx context.Context, query string, args ...any) ([]catalog.CarBrand, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []catalog.CarBrand
	for rows.Next() {
		var b models.CarBrand
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoPath, &b.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan brand row")
		}
		brand, err := toDomainCarBrand(&b)
		if err != nil {
			return nil, err
		}
		out = append(out, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (r *CatalogRepository) queryModels(ctx context.Context, query string, args ...any) ([]catalog.CarModel, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []catalog.CarModel
	for rows.Next() {
		var m models.CarModel
		if err := rows.Scan(&m.ID, &m.BrandID, &m.BrandName, &m.Name, &m.SamplePath, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan model row")
		}
		model, err := toDomainCarModel(&m)
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (r *CatalogRepository) querySpareParts(ctx context.Context, query string, args ...any) ([]catalog.SparePart, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []catalog.SparePart
	for rows.Next() {
		var p models.SparePart
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan spare part row")
		}
		part, err := toDomainSparePart(&p)
		if err != nil {
			return nil, err
		}
		out = append(out, part)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (r *CatalogRepository) queryConcernSolutions(ctx context.Context, query string, args ...any) ([]catalog.ConcernSolution, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []catalog.ConcernSolution
	for rows.Next() {
		var c models.ConcernSolution
		if err := rows.Scan(&c.ID, &c.Concern, &c.Solution, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan concern solution row")
		}
		item, err := toDomainConcernSolution(&c)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
