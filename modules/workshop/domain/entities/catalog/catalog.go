// Package catalog holds the workshop master data used to suggest values when
// job cards are filled in. Job cards copy names as text and keep no
// reference to these records.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CarBrand struct {
	ID        uuid.UUID
	Name      string
	LogoPath  string
	CreatedAt time.Time
}

type CarModel struct {
	ID         uuid.UUID
	BrandID    uuid.UUID
	BrandName  string
	Name       string
	SamplePath string
	CreatedAt  time.Time
}

// DisplayName is "Brand Model".
func (m CarModel) DisplayName() string {
	return strings.TrimSpace(m.BrandName + " " + m.Name)
}

type SparePart struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type ConcernSolution struct {
	ID        uuid.UUID
	Concern   string
	Solution  string
	CreatedAt time.Time
}

func NewCarBrand(name, logoPath string, now time.Time) CarBrand {
	return CarBrand{ID: uuid.New(), Name: strings.TrimSpace(name), LogoPath: strings.TrimSpace(logoPath), CreatedAt: now}
}

func NewCarModel(brandID uuid.UUID, name, samplePath string, now time.Time) CarModel {
	return CarModel{ID: uuid.New(), BrandID: brandID, Name: strings.TrimSpace(name), SamplePath: strings.TrimSpace(samplePath), CreatedAt: now}
}

func NewSparePart(name string, now time.Time) SparePart {
	return SparePart{ID: uuid.New(), Name: strings.TrimSpace(name), CreatedAt: now}
}

func NewConcernSolution(concern, solution string, now time.Time) ConcernSolution {
	return ConcernSolution{ID: uuid.New(), Concern: strings.TrimSpace(concern), Solution: strings.TrimSpace(solution), CreatedAt: now}
}
