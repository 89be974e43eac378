package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"lecture-summary/internal/domain"
)

// RequestValidator wraps go-playground/validator for request bodies.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	// report json names so errors match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validator: v}
}

// Validate reports the first failing field as domain.ErrInvalidArgument.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return fmt.Errorf("%w: %s failed on '%s' validation", domain.ErrInvalidArgument, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
