package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// Global validator instance
var validate *Validator

// InitValidator initializes the global validator
func InitValidator() {
	v := validator.New()

	// Register custom validation for quest categories and action types
	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("actiontype", validateActionType)

	validate = &Validator{validate: v}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a user-friendly map
// This prevents leaking internal struct names and provides cleaner error messages
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "category":
			errs[field] = "Invalid quest category"
		case "actiontype":
			errs[field] = "Invalid action type"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// Custom validation function for quest categories
func validateCategory(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	_, ok := domain.ParseCategory(raw)
	return ok
}

// Valid action types accepted on the action ingress
var validActionTypes = map[domain.ActionType]bool{
	domain.ActionBlockBreak: true,
	domain.ActionCollect:    true,
	domain.ActionMobKill:    true,
	domain.ActionCraft:      true,
	domain.ActionMove:       true,
	domain.ActionExternal:   true,
}

// Custom validation function for action types
func validateActionType(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	return validActionTypes[domain.ActionType(strings.ToLower(raw))]
}
