package processor

import (
	"errors"

	"github.com/aws/smithy-go"
)

// isValidationFault reports whether the store rejected the write for a
// schema/validation-class reason. Those never succeed on retry.
func isValidationFault(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException"
}
