package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON names so error maps line up with form keys
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("nic", func(fl validator.FieldLevel) bool {
		return IsValidNIC(fl.Field().String())
	})
	_ = v.RegisterValidation("contact_number", func(fl validator.FieldLevel) bool {
		return IsValidContactNumber(fl.Field().Interface())
	})
	_ = v.RegisterValidation("sl_mobile", func(fl validator.FieldLevel) bool {
		return IsValidSriLankanMobile(fl.Field().Interface())
	})
	_ = v.RegisterValidation("license_no", func(fl validator.FieldLevel) bool {
		return IsValidLicenseNo(fl.Field().String())
	})
	_ = v.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		return IsValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return isGender(fl.Field().String())
	})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			label := Label(field)
			switch e.Tag() {
			case "required":
				errors[field] = label + " is required"
			case "email":
				errors[field] = "Invalid email format"
			case "min":
				errors[field] = label + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = label + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = label + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = label + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = label + " must be one of: " + e.Param()
			case "nic":
				errors[field] = "Invalid NIC format"
			case "contact_number":
				errors[field] = "Contact number must be 10 digits"
			case "sl_mobile":
				errors[field] = "Invalid phone format (e.g., 0771234567)"
			case "license_no":
				errors[field] = "License number must be 8 letters or digits"
			case "iso_date":
				errors[field] = label + " must use YYYY-MM-DD"
			case "gender":
				errors[field] = "Invalid gender value"
			default:
				errors[field] = label + " is invalid"
			}
		}
	}

	return errors
}
