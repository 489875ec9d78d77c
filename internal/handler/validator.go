package handler

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/idlegarden/internal/domain"
)

// Validator checks request structs against their validate tags. Errors
// name fields by their JSON key.
type Validator struct {
	validate *validator.Validate
}

var (
	validatorOnce sync.Once
	shared        *Validator
)

// InitValidator builds the shared validator. It is safe to call more than once.
func InitValidator() {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("reward_type", validateRewardType)
		_ = v.RegisterValidation("effect_type", validateEffectType)
		shared = &Validator{validate: v}
	})
}

// GetValidator returns the shared validator
func GetValidator() *Validator {
	InitValidator()
	return shared
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s any) error {
	return v.validate.Struct(s)
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func validateRewardType(fl validator.FieldLevel) bool {
	return slices.Contains(domain.RewardTypes, fl.Field().String())
}

var effectTypes = []domain.EffectType{
	domain.EffectHarvest,
	domain.EffectGrowth,
	domain.EffectExp,
	domain.EffectPlantCost,
	domain.EffectGemChance,
}

func validateEffectType(fl validator.FieldLevel) bool {
	return slices.Contains(effectTypes, domain.EffectType(fl.Field().String()))
}

// FormatValidationError formats validation errors into a field -> message map
// without leaking struct names.
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
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "reward_type":
			errs[field] = "Unknown reward type"
		case "effect_type":
			errs[field] = "Unknown effect type"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min", "gte":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}
