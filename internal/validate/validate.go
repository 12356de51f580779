// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package validate checks form input structs and reports the first failure
// as an *apperr.ValidationError.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form name
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return val
}

// messageIDs maps validator tags to translation keys.
var messageIDs = map[string]string{
	"required": "ValidationRequired",
	"email":    "ValidationEmail",
	"numeric":  "ValidationNumeric",
	"number":   "ValidationNumeric",
	"oneof":    "ValidationOneOf",
	"eqfield":  "ValidationPasswordMismatch",
	"datetime": "ValidationTime",
	"min":      "ValidationLength",
	"max":      "ValidationLength",
	"gte":      "ValidationRange",
	"lte":      "ValidationRange",
}

// Struct validates s. Structs are checked field by field in declaration
// order; only the first failure is reported.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	id, ok := messageIDs[first.Tag()]
	if !ok {
		id = "ValidationInvalid"
	}
	return apperr.Validation(first.Field(), id)
}

// Decimal normalizes a decimal number typed with a comma separator.
func Decimal(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}
