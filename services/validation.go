package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"hostel-complaint-api/models"

	"github.com/go-playground/validator/v10"
)

// newInputValidator reads the same `binding` tags gin uses so request DTOs and
// service inputs share one set of rules.
func newInputValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	RegisterValidationRules(v)
	return v
}

// RegisterValidationRules adds the custom tags used by request and input structs.
// It is also applied to gin's binding validator at start-up.
func RegisterValidationRules(v *validator.Validate) {
	_ = v.RegisterValidation("hostel", func(fl validator.FieldLevel) bool {
		return models.IsValidHostel(fl.Field().String())
	})
	_ = v.RegisterValidation("announcement_tag", func(fl validator.FieldLevel) bool {
		tag := fl.Field().String()
		return tag == "" || models.IsValidAnnouncementTag(tag)
	})
}

func validationFailure(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	return newValidationError(field, "%s", describeRule(fe))
}

func describeRule(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if isList {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hostel":
		return "must be one of: " + strings.Join(models.Hostels, ", ")
	case "announcement_tag":
		return "must be one of: " + strings.Join(models.AnnouncementTags, ", ")
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
