package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	productIDPattern = regexp.MustCompile(`^[A-Z0-9]{1,20}$`)
	freeTextPattern  = regexp.MustCompile(`^[A-Za-z0-9\s]{1,100}$`)
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	mustRegister("productid", func(fl validator.FieldLevel) bool {
		return productIDPattern.MatchString(fl.Field().String())
	})
	mustRegister("freetext", func(fl validator.FieldLevel) bool {
		return freeTextPattern.MatchString(fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// jsonFieldName reports fields under their JSON names
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ValidateVar validates a single value, e.g. a query parameter, against a tag expression
func ValidateVar(field string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return &FieldError{Field: field, Tag: firstFailedTag(err)}
	}
	return nil
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// FieldError is a validation failure of a single named value
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: failed %s validation", e.Field, e.Tag)
}

func firstFailedTag(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		return validationErrors[0].Tag()
	}
	return "invalid"
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if fieldErr, ok := err.(*FieldError); ok {
		return []ValidationError{{Field: fieldErr.Field, Message: messageForTag(fieldErr.Tag, "")}}
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag(), e.Param()),
			})
		}
	}

	return errors
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "productid":
		return "Must be 1 to 20 uppercase letters or digits"
	case "freetext":
		return "Must be 1 to 100 letters, digits or spaces"
	case "datetime":
		return "Must be a date formatted as " + param
	case "boolean":
		return "Must be true or false"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + param
	case "lte":
		return "Value must be less than or equal to " + param
	case "gtefield":
		return "Value must not be before " + param
	default:
		return "Invalid value"
	}
}
