package constants

import "github.com/go-playground/validator/v10"

// DateLayout is the wire format of calendar dates in DTOs.
const DateLayout = "2006-01-02"

var Validate = validator.New(validator.WithRequiredStructEnabled())
