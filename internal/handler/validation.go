package handler

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/segyhp/tenant-billing/internal/domain"
)

// newValidator returns a validator that understands decimal amounts and
// payment controls
func newValidator() *validator.Validate {
	v := validator.New()

	// decimals are validated through their string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt", decimalGreaterThan)
	_ = v.RegisterValidation("payment_control", func(fl validator.FieldLevel) bool {
		return domain.PaymentControl(fl.Field().String()).IsKnown()
	})

	return v
}

func decimalGreaterThan(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThan(limit)
}
