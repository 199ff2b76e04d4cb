// internal/utils/validator.go
package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/javajoker/story-mcp/internal/pil"
)

var validate *validator.Validate

var tokenSymbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,10}$`)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("eth_address", validateEthAddress)
	validate.RegisterValidation("eth_address_or_symbol", validateEthAddressOrSymbol)
	validate.RegisterValidation("decimal_amount", validateDecimalAmount)
	validate.RegisterValidation("license_preset", validateLicensePreset)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateEthAddress(fl validator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

func validateEthAddressOrSymbol(fl validator.FieldLevel) bool {
	v := strings.TrimSpace(fl.Field().String())
	return common.IsHexAddress(v) || tokenSymbolPattern.MatchString(v)
}

// decimal_amount accepts a non-negative decimal string such as "1.5".
func validateDecimalAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

func validateLicensePreset(fl validator.FieldLevel) bool {
	return pil.Preset(fl.Field().String()).Valid()
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "url":
		return e.Field() + " must be a URL"
	case "eth_address":
		return e.Field() + " must be a 0x-prefixed 20-byte hex address"
	case "eth_address_or_symbol":
		return e.Field() + " must be a token address or a symbol such as IP or WIP"
	case "decimal_amount":
		return e.Field() + " must be a non-negative decimal amount"
	case "license_preset":
		return e.Field() + " must be one of commercial_remix, non_commercial, commercial_use, custom"
	default:
		return e.Field() + " is invalid"
	}
}
