package validate

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/city-population-api/internal/domain"
)

// maxBodyBytes bounds request bodies; a city record is tiny.
const maxBodyBytes = 1 << 16

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	// report json field names in error meta
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// DecodeJSON decodes a single JSON object, keeping numbers as json.Number so
// callers can tell integers from fractions.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	return dec.Decode(dst)
}

// Struct runs the validate tags of s and returns a validation_error carrying
// one meta entry per failing field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.ErrInvalidBody("invalid request", nil)
	}

	meta := make(map[string]string, len(ves))
	for _, fe := range ves {
		meta[fe.Field()] = message(fe)
	}
	return domain.ErrValidationMeta("invalid request", meta)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
