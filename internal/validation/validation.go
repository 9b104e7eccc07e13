// Package validation builds the validator shared by the HTTP layer and the use cases.
package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ShortCodeTag is the validation tag for custom short codes.
const ShortCodeTag = "shortcode"

var shortCodeRegexp = regexp.MustCompile(`^[a-zA-Z0-9-]{3,10}$`)

// New returns a validator that reports fields by their json names and
// understands the shortcode tag.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// The regexp is constant, registration cannot fail.
	_ = validate.RegisterValidation(ShortCodeTag, func(fl validator.FieldLevel) bool {
		return shortCodeRegexp.MatchString(fl.Field().String())
	})

	return validate
}
