package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// ErrorResponse describes a single failed constraint.
type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

// Message renders the constraint failure in a human readable way.
func (e *ErrorResponse) Message() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.FailedField)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.FailedField)
	case "gt":
		if e.Value == "0" {
			return fmt.Sprintf("%s must be positive", e.FailedField)
		}
		return fmt.Sprintf("%s must be greater than %s", e.FailedField, e.Value)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.FailedField, e.Value)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.FailedField, e.Value)
	case "money":
		return fmt.Sprintf("%s must have at most %d decimal places and be less than %s", e.FailedField, MoneyScale, MaxMoney)
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.FailedField, e.Tag)
}

// MoneyScale is the number of fractional digits a numeric(10,2) amount keeps.
const MoneyScale = 2

// MaxMoney is the exclusive upper bound of a numeric(10,2) amount.
var MaxMoney = decimal.New(1, 8)

var validate = validator.New()

func init() {
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("notblank", validators.NotBlank)
	validate.RegisterValidation("money", validateMoney)

	// Numeric tags (gt, gte) compare decimals through their float value.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// validateMoney accepts amounts that fit a numeric(10,2) column without rounding.
// Decimal fields arrive already converted to float64 by the custom type func,
// so the exact value is read back from the parent struct when possible.
func validateMoney(fl validator.FieldLevel) bool {
	if parent := fl.Parent(); parent.Kind() == reflect.Struct {
		if raw := parent.FieldByName(fl.StructFieldName()); raw.IsValid() && raw.CanInterface() {
			if d, ok := raw.Interface().(decimal.Decimal); ok {
				return IsMoney(d)
			}
		}
	}

	var d decimal.Decimal
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		d = v
	case float64:
		d = decimal.NewFromFloat(v)
	default:
		return false
	}
	return IsMoney(d)
}

// IsMoney reports whether d has at most MoneyScale fractional digits and an
// absolute value below MaxMoney.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale)) && d.Abs().LessThan(MaxMoney)
}

// ValidateStruct checks data against its validate tags and returns every failure.
// A nil result means data is valid.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "body", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Messages flattens errs into a field -> message map suitable for a JSON body.
func Messages(errs []*ErrorResponse) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := out[e.FailedField]; !seen {
			out[e.FailedField] = e.Message()
		}
	}
	return out
}
