package params

import (
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"
)

// Field documents one parameter of a module contract.
type Field struct {
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`
	Default   string   `json:"default,omitempty" yaml:"default,omitempty"`
	Choices   []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	Required  bool     `json:"required" yaml:"required"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Secret    bool     `json:"secret,omitempty" yaml:"secret,omitempty"`
	Doc       string   `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Describe reflects over a parameter struct and returns its contract sorted
// by parameter name.
func Describe(schema any) []Field {
	names := paramNames(schema)
	var out []Field
	for _, field := range structs.Fields(schema) {
		name := paramName(field.Tag(tagName), field.Name())
		if name == "-" {
			continue
		}

		rules := strings.Split(field.Tag("validate"), ",")
		f := Field{
			Name:    name,
			Type:    typeName(reflect.TypeOf(field.Value())),
			Default: field.Tag("default"),
			Secret:  field.Tag("secret") == "true",
			Doc:     field.Tag("doc"),
		}

		var conds []string
		for _, rule := range rules {
			tag, arg, _ := strings.Cut(rule, "=")
			switch tag {
			case "required":
				f.Required = true
			case "oneof":
				f.Choices = strings.Fields(arg)
			case "required_if":
				conds = append(conds, "required when "+conditions(arg, names))
			case "required_with":
				conds = append(conds, "required with "+fieldList(arg, names))
			case "required_without":
				conds = append(conds, "required unless "+fieldList(arg, names)+" is set")
			case "excluded_with":
				conds = append(conds, "excludes "+fieldList(arg, names))
			}
		}
		f.Condition = strings.Join(conds, "; ")
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice:
		return "list"
	case reflect.Map:
		return "dict"
	default:
		return t.Kind().String()
	}
}
