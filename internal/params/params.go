// Package params turns the flat parameter map a task receives into a typed,
// validated parameter struct.
//
// Parameter structs describe their contract with field tags:
//
//	param    public parameter name
//	default  value applied when the caller omits the parameter
//	validate go-playground/validator rules (choices, required, co-occurrence)
//	doc      one-line description
//	secret   "true" for values that must never be logged or returned
//
// Optional parameters without a default are pointer fields so that an
// omitted parameter stays distinguishable from a zero value.
package params

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"

	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

const tagName = "param"

// Checker is implemented by parameter structs whose rules cannot be
// expressed with tags alone. Check runs after tag validation succeeds.
type Checker interface {
	Check() error
}

// Decode applies defaults, decodes raw into out and validates the result.
// out must be a pointer to a parameter struct. Unknown parameters are
// rejected. Every failure is returned as a *errors.ValidationError before
// any remote call can be made.
func Decode(raw map[string]any, out any) error {
	if err := applyDefaults(out); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("build parameter decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return decodeError(err)
	}

	if err := Validate(out); err != nil {
		return err
	}
	if checker, ok := out.(Checker); ok {
		return checker.Check()
	}
	return nil
}

// Validate runs the struct's validate tags.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("", err.Error(), err)
	}

	names := paramNames(v)
	var merr *multierror.Error
	for _, fe := range ves {
		merr = multierror.Append(merr, apperrors.NewValidationError(fe.Field(), describe(fe, names), fe))
	}
	return collapse(merr)
}

// Require reports every name missing from supplied as a validation failure
// explained by reason, e.g. "is required when replica_of is not set".
func Require(supplied map[string]any, reason string, names ...string) error {
	var merr *multierror.Error
	for _, name := range names {
		if _, ok := supplied[name]; !ok {
			merr = multierror.Append(merr, apperrors.NewValidationError(name, reason, nil))
		}
	}
	return collapse(merr)
}

// collapse returns nil, the single failure, or one ValidationError
// aggregating all of them.
func collapse(merr *multierror.Error) error {
	if merr == nil || len(merr.Errors) == 0 {
		return nil
	}
	if len(merr.Errors) == 1 {
		return merr.Errors[0]
	}

	merr.ErrorFormat = func(errs []error) string {
		parts := make([]string, 0, len(errs))
		for _, e := range errs {
			parts = append(parts, strings.TrimPrefix(e.Error(), "validation error: "))
		}
		return strings.Join(parts, "; ")
	}
	return apperrors.NewValidationError("", merr.Error(), merr)
}

// Supplied returns the explicitly supplied parameters of a decoded struct,
// keyed by parameter name. Nil pointer fields are omitted; pointer values
// are dereferenced. Secret fields are omitted unless includeSecrets is set.
func Supplied(v any, includeSecrets bool) map[string]any {
	out := make(map[string]any)
	for _, field := range structs.Fields(v) {
		if !field.IsExported() {
			continue
		}
		name := paramName(field.Tag(tagName), field.Name())
		if name == "-" {
			continue
		}
		if field.Tag("secret") == "true" && !includeSecrets {
			continue
		}
		value := reflect.ValueOf(field.Value())
		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				continue
			}
			value = value.Elem()
		}
		out[name] = value.Interface()
	}
	return out
}

// Secrets lists the parameter names tagged secret. Anything but a struct
// has none.
func Secrets(schema any) []string {
	if schema == nil || !structs.IsStruct(schema) {
		return nil
	}
	var out []string
	for _, field := range structs.Fields(schema) {
		if field.Tag("secret") == "true" {
			out = append(out, paramName(field.Tag(tagName), field.Name()))
		}
	}
	sort.Strings(out)
	return out
}

func applyDefaults(out any) error {
	defaults := make(map[string]any)
	for _, field := range structs.Fields(out) {
		def, ok := lookupTag(field, "default")
		if !ok {
			continue
		}
		defaults[paramName(field.Tag(tagName), field.Name())] = def
	}
	if len(defaults) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build default decoder: %w", err)
	}
	if err := decoder.Decode(defaults); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	return nil
}

func decodeError(err error) error {
	mErr, ok := err.(*mapstructure.Error)
	if !ok || len(mErr.Errors) == 0 {
		return apperrors.NewValidationError("", err.Error(), err)
	}

	var merr *multierror.Error
	for _, msg := range mErr.Errors {
		merr = multierror.Append(merr, apperrors.NewValidationError(decodeField(msg), msg, nil))
	}
	if len(merr.Errors) == 1 {
		return merr.Errors[0]
	}
	return apperrors.NewValidationError("", strings.Join(mErr.Errors, "; "), merr)
}

// decodeField extracts the parameter name from a mapstructure message such
// as `'ttl' expected type 'int', got unconvertible type 'string'`.
func decodeField(msg string) string {
	if !strings.HasPrefix(msg, "'") {
		return ""
	}
	end := strings.Index(msg[1:], "'")
	if end < 0 {
		return ""
	}
	return msg[1 : end+1]
}

func lookupTag(field *structs.Field, key string) (string, bool) {
	tag := field.Tag(key)
	return tag, tag != ""
}

func paramName(tag, fallback string) string {
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return strings.ToLower(fallback)
	}
	return name
}

// paramNames maps Go field names to parameter names for v's struct type.
func paramNames(v any) map[string]string {
	names := make(map[string]string)
	for _, field := range structs.Fields(v) {
		names[field.Name()] = paramName(field.Tag(tagName), field.Name())
	}
	return names
}
