package params

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance configures and returns the shared validator used for
// every parameter struct.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		// Report public parameter names instead of Go field names.
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := paramName(field.Tag.Get(tagName), field.Name)
			if name == "-" {
				return ""
			}
			return name
		})

		validateInst = v
	})

	return validateInst
}

// describe renders a validator failure in terms of parameter names.
func describe(fe validator.FieldError, names map[string]string) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return fmt.Sprintf("is required when %s", conditions(fe.Param(), names))
	case "required_with":
		return fmt.Sprintf("is required together with %s", fieldList(fe.Param(), names))
	case "required_without":
		return fmt.Sprintf("is required unless %s is set", fieldList(fe.Param(), names))
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", fieldList(fe.Param(), names))
	case "excluded_if":
		return fmt.Sprintf("is not allowed when %s", conditions(fe.Param(), names))
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "cidrv4", "cidr":
		return fmt.Sprintf("must be a CIDR block, got %v", fe.Value())
	case "ip", "ipv4":
		return fmt.Sprintf("must be an IP address, got %v", fe.Value())
	case "email":
		return fmt.Sprintf("must be an email address, got %v", fe.Value())
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}

// conditions renders "ZoneType private State present" as
// "zone_type is private and state is present".
func conditions(param string, names map[string]string) string {
	parts := strings.Fields(param)
	var out []string
	for i := 0; i+1 < len(parts); i += 2 {
		out = append(out, fmt.Sprintf("%s is %s", lookupName(parts[i], names), parts[i+1]))
	}
	return strings.Join(out, " and ")
}

func fieldList(param string, names map[string]string) string {
	parts := strings.Fields(param)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, lookupName(part, names))
	}
	return strings.Join(out, ", ")
}

func lookupName(field string, names map[string]string) string {
	if name, ok := names[field]; ok {
		return name
	}
	return strings.ToLower(field)
}
