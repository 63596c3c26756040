package tools

import (
	"math"
	"strings"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
)

// Argument extraction helpers. Arguments arrive as decoded JSON, so
// numbers are float64 regardless of declared type; these helpers
// coerce to the Go type the tool wants and report absent vs invalid
// separately. A nil argument counts as absent.

func stringArg(args map[string]interface{}, name string) (string, bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", false, errors.NewInvalidParameterError(name, "expected a string")
	}
	return s, true, nil
}

func requiredStringArg(args map[string]interface{}, name string) (string, error) {
	s, ok, err := stringArg(args, name)
	if err != nil {
		return "", err
	}
	if !ok || s == "" {
		return "", errors.NewInvalidParameterError(name, "required argument missing")
	}
	return s, nil
}

func intArg(args map[string]interface{}, name string) (int, bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false, errors.NewInvalidParameterError(name, "expected an integer")
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	default:
		return 0, false, errors.NewInvalidParameterError(name, "expected an integer")
	}
}

func intArgDefault(args map[string]interface{}, name string, def int) (int, error) {
	v, ok, err := intArg(args, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func requiredIntArg(args map[string]interface{}, name string) (int, error) {
	v, ok, err := intArg(args, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewInvalidParameterError(name, "required argument missing")
	}
	return v, nil
}

func floatArg(args map[string]interface{}, name string) (float64, bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	default:
		return 0, false, errors.NewInvalidParameterError(name, "expected a number")
	}
}

func floatArgDefault(args map[string]interface{}, name string, def float64) (float64, error) {
	v, ok, err := floatArg(args, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func stringsArg(args map[string]interface{}, name string) ([]string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.NewInvalidParameterError(name, "expected an array of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.NewInvalidParameterError(name, "expected an array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

// enumArg validates a string argument against an allow-list,
// returning the default when absent.
func enumArg(args map[string]interface{}, name, def string, allowed []string) (string, error) {
	s, ok, err := stringArg(args, name)
	if err != nil {
		return "", err
	}
	if !ok || s == "" {
		return def, nil
	}
	s = strings.ToLower(s)
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", errors.NewInvalidChoiceError(name, s, allowed)
}
