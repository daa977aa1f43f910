package validators

import (
	"github.com/go-playground/validator/v10"
)

// CoordinateRule accepts values usable as either latitude or longitude.
// Range-specific checks happen in the services; this catches garbage
// like NaN-ish payloads early.
func CoordinateRule(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= -180 && v <= 180
}
