package v1

import (
	"encoding/json"
	"errors"
	"io"
)

// bindErrorMessage returns the client message for a body that could not be
// decoded. A field of the wrong JSON type (e.g. specialties sent as a string)
// counts as a missing field; anything else is a malformed body. Raw decoder
// errors are never exposed to clients.
func bindErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return msgMissingFields
	}
	if errors.Is(err, io.EOF) {
		return msgMissingFields
	}
	return msgInvalidBody
}
