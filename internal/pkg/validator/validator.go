package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var ngPhoneRegex = regexp.MustCompile(`^0\d{10}$`)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Nigerian mobile number: 11 digits with a leading zero
	validate.RegisterValidation("ng_phone", func(fl validator.FieldLevel) bool {
		return ngPhoneRegex.MatchString(fl.Field().String())
	})

	// Mobile network operator
	validate.RegisterValidation("network", func(fl validator.FieldLevel) bool {
		network := fl.Field().String()
		validNetworks := []string{"mtn", "glo", "airtel", "9mobile"}
		for _, n := range validNetworks {
			if network == n {
				return true
			}
		}
		return false
	})

	// Ledger entry category
	validate.RegisterValidation("txcategory", func(fl validator.FieldLevel) bool {
		category := fl.Field().String()
		validCategories := []string{"deposit", "airtime", "data", "cable", "electricity", "betting", "adjustment", ""}
		for _, c := range validCategories {
			if category == c {
				return true
			}
		}
		return false
	})

	// Transaction PIN: exactly 4 digits
	validate.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		pin := fl.Field().String()
		if len(pin) != 4 {
			return false
		}
		for _, r := range pin {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
		case "ng_phone":
			errors[field] = "Must be a valid 11-digit phone number starting with 0"
		case "network":
			errors[field] = "Invalid network. Must be: mtn, glo, airtel, or 9mobile"
		case "txcategory":
			errors[field] = "Invalid transaction category"
		case "pin":
			errors[field] = "PIN must be exactly 4 digits"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
