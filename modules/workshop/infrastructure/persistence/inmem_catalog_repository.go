package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
)

type InmemCatalogRepository struct {
	mu        sync.RWMutex
	brands    map[uuid.UUID]catalog.CarBrand
	models    map[uuid.UUID]catalog.CarModel
	parts     map[uuid.UUID]catalog.SparePart
	solutions map[uuid.UUID]catalog.ConcernSolution
}

func NewInmemCatalogRepository() *InmemCatalogRepository {
	return &InmemCatalogRepository{
		brands:    make(map[uuid.UUID]catalog.CarBrand),
		models:    make(map[uuid.UUID]catalog.CarModel),
		parts:     make(map[uuid.UUID]catalog.SparePart),
		solutions: make(map[uuid.UUID]catalog.ConcernSolution),
	}
}

func (r *InmemCatalogRepository) CreateBrand(_ context.Context, b catalog.CarBrand) (catalog.CarBrand, error) {
	return r.putBrand(b, true)
}

func (r *InmemCatalogRepository) UpdateBrand(_ context.Context, b catalog.CarBrand) (catalog.CarBrand, error) {
	return r.putBrand(b, false)
}

func (r *InmemCatalogRepository) putBrand(b catalog.CarBrand, create bool) (catalog.CarBrand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkPut(r.brands, b.ID, create); err != nil {
		return catalog.CarBrand{}, err
	}
	for id, other := range r.brands {
		if id != b.ID && other.Name == b.Name {
			return catalog.CarBrand{}, catalog.ErrDuplicate
		}
	}
	if !create {
		b.CreatedAt = r.brands[b.ID].CreatedAt
	}
	r.brands[b.ID] = b
	for id, m := range r.models {
		if m.BrandID == b.ID {
			m.BrandName = b.Name
			r.models[id] = m
		}
	}
	return b, nil
}

func (r *InmemCatalogRepository) GetBrand(_ context.Context, id uuid.UUID) (catalog.CarBrand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.brands[id]
	if !ok {
		return catalog.CarBrand{}, catalog.ErrNotFound
	}
	return b, nil
}

func (r *InmemCatalogRepository) ListBrands(_ context.Context) ([]catalog.CarBrand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := values(r.brands)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InmemCatalogRepository) CreateModel(_ context.Context, m catalog.CarModel) (catalog.CarModel, error) {
	return r.putModel(m, true)
}

func (r *InmemCatalogRepository) UpdateModel(_ context.Context, m catalog.CarModel) (catalog.CarModel, error) {
	return r.putModel(m, false)
}

func (r *InmemCatalogRepository) putModel(m catalog.CarModel, create bool) (catalog.CarModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkPut(r.models, m.ID, create); err != nil {
		return catalog.CarModel{}, err
	}
	brand, ok := r.brands[m.BrandID]
	if !ok {
		return catalog.CarModel{}, catalog.ErrNotFound
	}
	for id, other := range r.models {
		if id != m.ID && other.BrandID == m.BrandID && other.Name == m.Name {
			return catalog.CarModel{}, catalog.ErrDuplicate
		}
	}
	if !create {
		m.CreatedAt = r.models[m.ID].CreatedAt
	}
	m.BrandName = brand.Name
	r.models[m.ID] = m
	return m, nil
}

func (r *InmemCatalogRepository) ListModels(_ context.Context, brandID uuid.UUID) ([]catalog.CarModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.CarModel, 0, len(r.models))
	for _, m := range r.models {
		if brandID == uuid.Nil || m.BrandID == brandID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })
	return out, nil
}

func (r *InmemCatalogRepository) CreateSparePart(_ context.Context, p catalog.SparePart) (catalog.SparePart, error) {
	return r.putSparePart(p, true)
}

func (r *InmemCatalogRepository) UpdateSparePart(_ context.Context, p catalog.SparePart) (catalog.SparePart, error) {
	return r.putSparePart(p, false)
}

func (r *InmemCatalogRepository) putSparePart(p catalog.SparePart, create bool) (catalog.SparePart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkPut(r.parts, p.ID, create); err != nil {
		return catalog.SparePart{}, err
	}
	for id, other := range r.parts {
		if id != p.ID && other.Name == p.Name {
			return catalog.SparePart{}, catalog.ErrDuplicate
		}
	}
	if !create {
		p.CreatedAt = r.parts[p.ID].CreatedAt
	}
	r.parts[p.ID] = p
	return p, nil
}

func (r *InmemCatalogRepository) ListSpareParts(_ context.Context) ([]catalog.SparePart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := values(r.parts)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InmemCatalogRepository) CreateConcernSolution(_ context.Context, c catalog.ConcernSolution) (catalog.ConcernSolution, error) {
	return r.putConcernSolution(c, true)
}

func (r *InmemCatalogRepository) UpdateConcernSolution(_ context.Context, c catalog.ConcernSolution) (catalog.ConcernSolution, error) {
	return r.putConcernSolution(c, false)
}

func (r *InmemCatalogRepository) putConcernSolution(c catalog.ConcernSolution, create bool) (catalog.ConcernSolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkPut(r.solutions, c.ID, create); err != nil {
		return catalog.ConcernSolution{}, err
	}
	if !create {
		c.CreatedAt = r.solutions[c.ID].CreatedAt
	}
	r.solutions[c.ID] = c
	return c, nil
}

func (r *InmemCatalogRepository) ListConcernSolutions(_ context.Context) ([]catalog.ConcernSolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := values(r.solutions)
	sort.Slice(out, func(i, j int) bool { return out[i].Concern < out[j].Concern })
	return out, nil
}

// checkPut refuses creating an existing id and updating a missing one.
func checkPut[T any](m map[uuid.UUID]T, id uuid.UUID, create bool) error {
	_, exists := m[id]
	switch {
	case create && exists:
		return catalog.ErrDuplicate
	case !create && !exists:
		return catalog.ErrNotFound
	}
	return nil
}

func values[T any](m map[uuid.UUID]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
