package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrorResponse describes one failed field, keyed by its JSON name.
type ErrorResponse struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"-"`
	Message string `json:"message"`
}

var (
	validate = validator.New()

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// decimals validate as floats so gte/lte work on prices
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	validate.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return lowerPattern.MatchString(s) && upperPattern.MatchString(s) && digitPattern.MatchString(s)
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{Field: "body", Tag: "invalid", Message: err.Error()}}
		}
		for _, fe := range validationErrors {
			errors = append(errors, &ErrorResponse{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Param:   fe.Param(),
				Message: message(fe),
			})
		}
	}
	return errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "uuid_required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "username":
		return "may only contain letters, numbers and underscores"
	case "strong_password":
		return "must contain a lowercase letter, an uppercase letter and a number"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
