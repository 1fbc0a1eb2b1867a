// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	uzPhonePattern   = regexp.MustCompile(`^\+998\d{9}$`)
	alphaNamePattern = regexp.MustCompile(`^[A-Za-z]+(?: [A-Za-z]+)*$`)
	passwordPattern  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "uzphone", func(fl validator.FieldLevel) bool {
		return uzPhonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "alphaname", func(fl validator.FieldLevel) bool {
		return alphaNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "alnumpass", func(fl validator.FieldLevel) bool {
		return passwordPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		_, err := ParseRole(fl.Field().String())
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// FormatValidationError flattens validator errors into field -> message.
func FormatValidationError(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"body": err.Error()}
	}

	details := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = describeFieldError(fe)
	}

	return details
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	case "uzphone":
		return "must be in the format +998XXXXXXXXX"
	case "alphaname":
		return "must contain only latin letters and single spaces"
	case "alnumpass":
		return "must contain only latin letters and digits"
	case "role":
		return "must be one of Admin, User, Seller, SuperAdmin"
	case "isdefault":
		return "cannot be set"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
