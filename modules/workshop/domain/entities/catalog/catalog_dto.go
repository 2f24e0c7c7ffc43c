package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/garage/pkg/constants"
)

type BrandDTO struct {
	Name     string `json:"name" validate:"required,max=100"`
	LogoPath string `json:"logo_path"`
}

type ModelDTO struct {
	BrandID    string `json:"brand_id" validate:"required,uuid"`
	Name       string `json:"name" validate:"required,max=100"`
	SamplePath string `json:"sample_path"`
}

type SparePartDTO struct {
	Name string `json:"name" validate:"required,max=150"`
}

type ConcernSolutionDTO struct {
	Concern  string `json:"concern" validate:"required"`
	Solution string `json:"solution" validate:"required"`
}

// ValidationError lists the failing fields of a master data DTO.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+" "+v)
	}
	return "invalid catalog entry: " + strings.Join(parts, ", ")
}

// validate trims every string field of dto in place and runs the struct
// rules on it.
func validate(dto any, fields ...*string) error {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	err := constants.Validate.Struct(dto)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return out
}

func (d *BrandDTO) Validate() error { return validate(d, &d.Name, &d.LogoPath) }

func (d *ModelDTO) Validate() error {
	return validate(d, &d.BrandID, &d.Name, &d.SamplePath)
}

func (d *SparePartDTO) Validate() error { return validate(d, &d.Name) }

func (d *ConcernSolutionDTO) Validate() error {
	return validate(d, &d.Concern, &d.Solution)
}
