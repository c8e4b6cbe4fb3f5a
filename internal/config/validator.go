package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leductinjl/backend/internal/types"
)

// Validator validates configuration values.
type Validator interface {
	Validate(cfg *Config) error
}

type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a Validator backed by struct tag validation.
func NewValidator() Validator {
	return &validatorImpl{validate: validator.New()}
}

func (v *validatorImpl) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	if err := v.validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}
		messages := make([]string, 0, len(validationErrs))
		for _, e := range validationErrs {
			messages = append(messages, formatValidationError(e))
		}
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"configuration validation failed:\n  - "+strings.Join(messages, "\n  - "))
	}

	if !validGraphScheme(cfg.Graph.URI) {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("graph.uri must use a bolt:// or neo4j:// scheme (got: %s)", cfg.Graph.URI))
	}
	return nil
}

// graphSchemes are the connection schemes the driver accepts, including
// the TLS (+s) and self-signed (+ssc) variants.
var graphSchemes = []string{
	"bolt://", "bolt+s://", "bolt+ssc://",
	"neo4j://", "neo4j+s://", "neo4j+ssc://",
}

func validGraphScheme(uri string) bool {
	for _, scheme := range graphSchemes {
		if strings.HasPrefix(uri, scheme) {
			return true
		}
	}
	return false
}

func formatValidationError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	field = strings.TrimPrefix(field, "config.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got: %v)", field, e.Param(), e.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got: %v)", field, e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got: %v)", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}
