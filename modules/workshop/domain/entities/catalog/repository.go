package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores master data. Names are unique case-sensitively, as the
// database constraints are.
type Repository interface {
	CreateBrand(ctx context.Context, b CarBrand) (CarBrand, error)
	UpdateBrand(ctx context.Context, b CarBrand) (CarBrand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (CarBrand, error)
	ListBrands(ctx context.Context) ([]CarBrand, error)

	CreateModel(ctx context.Context, m CarModel) (CarModel, error)
	UpdateModel(ctx context.Context, m CarModel) (CarModel, error)
	ListModels(ctx context.Context, brandID uuid.UUID) ([]CarModel, error)

	CreateSparePart(ctx context.Context, p SparePart) (SparePart, error)
	UpdateSparePart(ctx context.Context, p SparePart) (SparePart, error)
	ListSpareParts(ctx context.Context) ([]SparePart, error)

	CreateConcernSolution(ctx context.Context, c ConcernSolution) (ConcernSolution, error)
	UpdateConcernSolution(ctx context.Context, c ConcernSolution) (ConcernSolution, error)
	ListConcernSolutions(ctx context.Context) ([]ConcernSolution, error)
}
