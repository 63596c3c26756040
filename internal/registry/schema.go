package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
)

// ValidateArgs checks a call's arguments against the tool's input
// schema: required fields present, values match their declared JSON
// type, and unknown fields rejected when the schema closes the object
// with additionalProperties: false.
func ValidateArgs(tool Tool, args map[string]interface{}) error {
	schema := tool.InputSchema
	if schema == nil {
		return nil
	}

	props, _ := schema["properties"].(map[string]interface{})

	if required, ok := schema["required"].([]interface{}); ok {
		for _, r := range required {
			name, _ := r.(string)
			if _, present := args[name]; !present {
				return errors.NewInvalidParameterError(name, "required argument missing")
			}
		}
	}

	if additional, ok := schema["additionalProperties"].(bool); ok && !additional {
		var unknown []string
		for name := range args {
			if _, known := props[name]; !known {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return errors.New(errors.InvalidParameter,
				fmt.Sprintf("unknown arguments: %s", strings.Join(unknown, ", ")))
		}
	}

	for name, value := range args {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}
		if err := checkType(name, prop, value); err != nil {
			return err
		}
	}

	return nil
}

func checkType(name string, prop map[string]interface{}, value interface{}) error {
	declared, _ := prop["type"].(string)
	if declared == "" || value == nil {
		return nil
	}

	switch declared {
	case "string":
		s, ok := value.(string)
		if !ok {
			return errors.NewInvalidParameterError(name, "expected a string")
		}
		if enum, ok := prop["enum"].([]interface{}); ok {
			return checkEnum(name, s, enum)
		}
	case "integer":
		switch v := value.(type) {
		case float64:
			if v != float64(int64(v)) {
				return errors.NewInvalidParameterError(name, "expected an integer")
			}
		case int, int64:
		default:
			return errors.NewInvalidParameterError(name, "expected an integer")
		}
	case "number":
		switch value.(type) {
		case float64, int, int64:
		default:
			return errors.NewInvalidParameterError(name, "expected a number")
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return errors.NewInvalidParameterError(name, "expected a boolean")
		}
	case "array":
		if _, ok := value.([]interface{}); !ok {
			return errors.NewInvalidParameterError(name, "expected an array")
		}
	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			return errors.NewInvalidParameterError(name, "expected an object")
		}
	}

	return nil
}

func checkEnum(name, value string, enum []interface{}) error {
	allowed := make([]string, 0, len(enum))
	for _, e := range enum {
		s, _ := e.(string)
		if s == value {
			return nil
		}
		allowed = append(allowed, s)
	}
	return errors.NewInvalidChoiceError(name, value, allowed)
}
