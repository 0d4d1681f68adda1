package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers the xctools validation tags on v.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("license_pattern", validateLicensePattern)
}

// validateLicensePattern reports whether the field is a well-formed
// doublestar pattern.
func validateLicensePattern(fl validator.FieldLevel) bool {
	return doublestar.ValidatePattern(fl.Field().String())
}

// newValidator returns a validator that names fields by their settings key.
func newValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := RegisterCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return v, nil
}

// Validate checks the decoded values.
func (c *Config) Validate() error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	err = v.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, describe(fe))
	}
	return errors.Join(errs...)
}

// describe turns a field error into a message keyed by the settings name.
func describe(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("unsupported %s %q (supported: %s)",
			field, fe.Value(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		return fmt.Errorf("%s must contain at least %s pattern", field, fe.Param())
	case "license_pattern":
		return fmt.Errorf("invalid license pattern %q", fe.Value())
	case "required":
		return fmt.Errorf("%s is required", field)
	default:
		return fmt.Errorf("%s failed %q validation", field, fe.Tag())
	}
}
