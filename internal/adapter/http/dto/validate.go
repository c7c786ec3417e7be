package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidationFailed is returned when a request body fails validation.
var ErrValidationFailed = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// decimals are validated as their string form; struct-typed fields
		// would otherwise skip field-level tags
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch d := field.Interface().(type) {
			case decimal.Decimal:
				return d.String()
			case decimal.NullDecimal:
				if d.Valid {
					return d.Decimal.String()
				}
			}
			return nil
		}, decimal.Decimal{}, decimal.NullDecimal{})
		_ = v.RegisterValidation("nonnegative_decimal", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative()
		})
		validate = v
	})
	return validate
}

// Validate checks req against its validate tags. Field problems are reported
// as "field: tag" pairs wrapped in ErrValidationFailed.
func Validate(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: %s", fieldPath(fe), fe.Tag()))
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
}

// fieldPath drops the struct name from the namespace, e.g.
// CreateInvoiceRequest.Lines[0].Item becomes Lines[0].Item.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
