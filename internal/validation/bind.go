package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/imrishuroy/go-order-triage/internal/apierr"
)

// BindAndValidate binds the JSON body into out and runs validation.
// On failure it returns a ValidationError listing every violated field;
// the caller is responsible for writing the response.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) *apierr.Error {
	if err := c.ShouldBindJSON(out); err != nil {
		return apierr.Validation("request body is missing or not valid JSON", nil)
	}

	if err := v.Struct(out); err != nil {
		return apierr.Validation("request validation failed", violationsToMap(err))
	}
	return nil
}

// RegisterJSONTagNames makes the validator report fields by their json tag
// so violation keys match the request shape (e.g. items[0].qty).
func RegisterJSONTagNames(v *validatorv10.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func violationsToMap(err error) map[string]string {
	out := map[string]string{}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		out["request"] = err.Error()
		return out
	}
	for _, fe := range ve {
		// drop the leading struct name from the namespace
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out[field] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "notblank":
		return "must not be blank"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
