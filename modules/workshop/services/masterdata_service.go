package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
)

// MasterDataService maintains the lookup lists used when filling job cards.
type MasterDataService struct {
	repo catalog.Repository
	now  func() time.Time
}

func NewMasterDataService(repo catalog.Repository) *MasterDataService {
	return &MasterDataService{repo: repo, now: time.Now}
}

func (s *MasterDataService) CreateBrand(ctx context.Context, dto *catalog.BrandDTO) (catalog.CarBrand, error) {
	if err := dto.Validate(); err != nil {
		return catalog.CarBrand{}, err
	}
	return s.repo.CreateBrand(ctx, catalog.NewCarBrand(dto.Name, dto.LogoPath, s.now()))
}

func (s *MasterDataService) UpdateBrand(ctx context.Context, id uuid.UUID, dto *catalog.BrandDTO) (catalog.CarBrand, error) {
	if err := dto.Validate(); err != nil {
		return catalog.CarBrand{}, err
	}
	brand, err := s.repo.GetBrand(ctx, id)
	if err != nil {
		return catalog.CarBrand{}, err
	}
	brand.Name = dto.Name
	brand.LogoPath = dto.LogoPath
	return s.repo.UpdateBrand(ctx, brand)
}

func (s *MasterDataService) ListBrands(ctx context.Context) ([]catalog.CarBrand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *MasterDataService) CreateModel(ctx context.Context, dto *catalog.ModelDTO) (catalog.CarModel, error) {
	if err := dto.Validate(); err != nil {
		return catalog.CarModel{}, err
	}
	brandID, err := uuid.Parse(dto.BrandID)
	if err != nil {
		return catalog.CarModel{}, err
	}
	if _, err := s.repo.GetBrand(ctx, brandID); err != nil {
		return catalog.CarModel{}, err
	}
	return s.repo.CreateModel(ctx, catalog.NewCarModel(brandID, dto.Name, dto.SamplePath, s.now()))
}

// UpdateModel renames a model or moves it to another brand. The creation
// time is kept.
func (s *MasterDataService) UpdateModel(ctx context.Context, id uuid.UUID, dto *catalog.ModelDTO) (catalog.CarModel, error) {
	if err := dto.Validate(); err != nil {
		return catalog.CarModel{}, err
	}
	brandID, err := uuid.Parse(dto.BrandID)
	if err != nil {
		return catalog.CarModel{}, err
	}
	if _, err := s.repo.GetBrand(ctx, brandID); err != nil {
		return catalog.CarModel{}, err
	}
	return s.repo.UpdateModel(ctx, catalog.CarModel{
		ID:         id,
		BrandID:    brandID,
		Name:       dto.Name,
		SamplePath: dto.SamplePath,
	})
}

// ListModels lists the models of brandID, or all models for uuid.Nil.
func (s *MasterDataService) ListModels(ctx context.Context, brandID uuid.UUID) ([]catalog.CarModel, error) {
	return s.repo.ListModels(ctx, brandID)
}

func (s *MasterDataService) CreateSparePart(ctx context.Context, dto *catalog.SparePartDTO) (catalog.SparePart, error) {
	if err := dto.Validate(); err != nil {
		return catalog.SparePart{}, err
	}
	return s.repo.CreateSparePart(ctx, catalog.NewSparePart(dto.Name, s.now()))
}

func (s *MasterDataService) UpdateSparePart(ctx context.Context, id uuid.UUID, dto *catalog.SparePartDTO) (catalog.SparePart, error) {
	if err := dto.Validate(); err != nil {
		return catalog.SparePart{}, err
	}
	return s.repo.UpdateSparePart(ctx, catalog.SparePart{ID: id, Name: dto.Name})
}

func (s *MasterDataService) ListSpareParts(ctx context.Context) ([]catalog.SparePart, error) {
	return s.repo.ListSpareParts(ctx)
}

func (s *MasterDataService) CreateConcernSolution(ctx context.Context, dto *catalog.ConcernSolutionDTO) (catalog.ConcernSolution, error) {
	if err := dto.Validate(); err != nil {
		return catalog.ConcernSolution{}, err
	}
	return s.repo.CreateConcernSolution(ctx, catalog.NewConcernSolution(dto.Concern, dto.Solution, s.now()))
}

func (s *MasterDataService) UpdateConcernSolution(ctx context.Context, id uuid.UUID, dto *catalog.ConcernSolutionDTO) (catalog.ConcernSolution, error) {
	if err := dto.Validate(); err != nil {
		return catalog.ConcernSolution{}, err
	}
	return s.repo.UpdateConcernSolution(ctx, catalog.ConcernSolution{ID: id, Concern: dto.Concern, Solution: dto.Solution})
}

func (s *MasterDataService) ListConcernSolutions(ctx context.Context) ([]catalog.ConcernSolution, error) {
	return s.repo.ListConcernSolutions(ctx)
}
