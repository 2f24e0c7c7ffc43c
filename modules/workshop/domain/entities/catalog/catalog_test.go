package catalog_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
)

func TestBrandDTO_Validate(t *testing.T) {
	dto := catalog.BrandDTO{Name: "  Hyundai "}
	require.NoError(t, dto.Validate())
	assert.Equal(t, "Hyundai", dto.Name)

	empty := catalog.BrandDTO{Name: "   "}
	err := empty.Validate()
	var verr *catalog.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "Name")
}

func TestModelDTO_Validate(t *testing.T) {
	dto := catalog.ModelDTO{BrandID: "not-a-uuid", Name: "i20"}
	err := dto.Validate()
	var verr *catalog.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, `failed "uuid" check`, verr.Fields["BrandID"])

	dto.BrandID = uuid.NewString()
	require.NoError(t, dto.Validate())
}

func TestConcernSolutionDTO_Validate(t *testing.T) {
	dto := catalog.ConcernSolutionDTO{Concern: "Squeak", Solution: ""}
	err := dto.Validate()
	var verr *catalog.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"Solution": `failed "required" check`}, verr.Fields)
}

func TestCarModel_DisplayName(t *testing.T) {
	m := catalog.NewCarModel(uuid.New(), " Creta ", "", time.Now())
	m.BrandName = "Hyundai"
	assert.Equal(t, "Hyundai Creta", m.DisplayName())

	m.BrandName = ""
	assert.Equal(t, "Creta", m.DisplayName())
}
