// Package validation decodes and validates the JSON bodies accepted by the
// text routes. It checks field presence and JSON primitive types only: values
// are never range-checked or compared with each other.
package validation

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes a single field that failed validation.
type FieldError struct {
	Field   string `json:"field"`           // JSON name of the field
	Message string `json:"message"`         // Human-readable error message
	Code    string `json:"code"`            // Machine-readable error code
	Value   string `json:"value,omitempty"` // The offending JSON value, when known
}

// Error is returned by DecodeJSON. Status is 400 for bodies that are not JSON
// and 422 for bodies whose fields are missing or mistyped.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
	err     error
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error {
	return e.err
}

// Details renders the error in the shape used by the error envelope.
func (e *Error) Details() map[string]interface{} {
	if len(e.Fields) == 0 {
		return nil
	}
	return map[string]interface{}{"fields": e.Fields}
}

// MissingField builds the 422 error for a required field that is absent.
// It is also used for multipart fields, which never go through DecodeJSON.
func MissingField(field string) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "Request validation failed",
		Fields: []FieldError{{
			Field:   field,
			Message: "field required",
			Code:    "missing",
		}},
	}
}

// DecodeJSON reads a JSON object from r into dst and validates it.
// dst must be a pointer to one of the request types in this package.
func DecodeJSON(r io.Reader, dst interface{}) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return &Error{Status: http.StatusBadRequest, Message: "Failed to read request body", err: err}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return &Error{
				Status:  http.StatusUnprocessableEntity,
				Message: "Request validation failed",
				Fields: []FieldError{{
					Field:   field,
					Message: fmt.Sprintf("expected %s, got %s", jsonKind(typeErr.Type), typeErr.Value),
					Code:    "type_error",
				}},
				err: err,
			}
		}
		return &Error{
			Status:  http.StatusBadRequest,
			Message: "Invalid JSON body",
			Fields: []FieldError{{
				Field:   "body",
				Message: err.Error(),
				Code:    "invalid_json",
			}},
			err: err,
		}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return &Error{Status: http.StatusUnprocessableEntity, Message: "Request validation failed", err: err}
		}

		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Message: messageFor(fe),
				Code:    missingOr(fe.Tag()),
			})
		}
		return &Error{
			Status:  http.StatusUnprocessableEntity,
			Message: "Request validation failed",
			Fields:  fields,
			err:     err,
		}
	}

	return nil
}

func messageFor(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "field required"
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

func missingOr(tag string) string {
	if tag == "required" {
		return "missing"
	}
	return tag + "_validation_failed"
}

// jsonKind names a Go type the way a client thinks of the JSON value.
func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
