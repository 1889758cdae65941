package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	RegisterJSONTagNames(v)

	// required passes a whitespace-only customerName, so a struct-level
	// check enforces non-blank after trimming.
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderRequest{})

	return v
}

func createOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)

	if req.CustomerName != "" && strings.TrimSpace(req.CustomerName) == "" {
		sl.ReportError(req.CustomerName, "customerName", "CustomerName", "notblank", "")
	}
}
