package searchspace

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ParameterType identifies the value type a parameter admits.
type ParameterType int

const (
	// ParameterTypeUnknown guards against misconfiguration so call sites can
	// detect missing metadata.
	ParameterTypeUnknown ParameterType = iota
	// ParameterTypeBool admits boolean values.
	ParameterTypeBool
	// ParameterTypeInt admits integer values.
	ParameterTypeInt
	// ParameterTypeFloat admits floating point values.
	ParameterTypeFloat
	// ParameterTypeString admits string values.
	ParameterTypeString
)

func (t ParameterType) String() string {
	switch t {
	case ParameterTypeBool:
		return "bool"
	case ParameterTypeInt:
		return "int"
	case ParameterTypeFloat:
		return "float"
	case ParameterTypeString:
		return "string"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the type participates in constraint evaluation.
func (t ParameterType) IsNumeric() bool {
	return t == ParameterTypeInt || t == ParameterTypeFloat
}

// ParseParameterType converts a string representation into the corresponding
// ParameterType. Returns ParameterTypeUnknown for unrecognised values.
func ParseParameterType(value string) ParameterType {
	switch strings.ToLower(value) {
	case "bool":
		return ParameterTypeBool
	case "int":
		return ParameterTypeInt
	case "float":
		return ParameterTypeFloat
	case "string":
		return ParameterTypeString
	default:
		return ParameterTypeUnknown
	}
}

// ParameterKind identifies the shape of a parameter's domain. Derived views
// filter by this tag instead of inspecting runtime types.
type ParameterKind int

const (
	// ParameterKindUnknown guards against misconfiguration.
	ParameterKindUnknown ParameterKind = iota
	// ParameterKindRange represents a bounded numeric interval.
	ParameterKindRange
	// ParameterKindChoice represents an explicit value set.
	ParameterKindChoice
	// ParameterKindFixed represents a single admissible value.
	ParameterKindFixed
)

func (k ParameterKind) String() string {
	switch k {
	case ParameterKindRange:
		return "range"
	case ParameterKindChoice:
		return "choice"
	case ParameterKindFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParseParameterKind converts a string representation into the corresponding
// ParameterKind. Returns ParameterKindUnknown for unrecognised values.
func ParseParameterKind(value string) ParameterKind {
	switch strings.ToLower(value) {
	case "range":
		return ParameterKindRange
	case "choice":
		return ParameterKindChoice
	case "fixed":
		return ParameterKindFixed
	default:
		return ParameterKindUnknown
	}
}

// numericValue extracts a float64 from the numeric representations accepted
// across parameter values, including json.Number produced by attribute
// decoding.
func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func isIntegral(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// validType reports whether value is an acceptable representation for t.
// Integer parameters accept floats that carry integral values so hand written
// parameterizations round-trip through JSON cleanly.
func validType(t ParameterType, value any) bool {
	switch t {
	case ParameterTypeBool:
		_, ok := value.(bool)
		return ok
	case ParameterTypeInt:
		f, ok := numericValue(value)
		return ok && isIntegral(f)
	case ParameterTypeFloat:
		f, ok := numericValue(value)
		return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
	case ParameterTypeString:
		_, ok := value.(string)
		return ok
	default:
		return false
	}
}

// castScalar coerces value to the canonical Go representation for t:
// bool, int, float64, or string.
func castScalar(t ParameterType, value any) (any, error) {
	switch t {
	case ParameterTypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("searchspace: cannot cast %v (%T) to bool", value, value)
		}
		return b, nil
	case ParameterTypeInt:
		f, ok := numericValue(value)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("searchspace: cannot cast %v (%T) to int", value, value)
		}
		return int(math.Round(f)), nil
	case ParameterTypeFloat:
		f, ok := numericValue(value)
		if !ok {
			return nil, fmt.Errorf("searchspace: cannot cast %v (%T) to float", value, value)
		}
		return f, nil
	case ParameterTypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("searchspace: cannot cast %v (%T) to string", value, value)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("searchspace: cannot cast to unknown parameter type")
	}
}

// cloneDependents deep copies a dependents mapping so clones never share
// dependent slices with their origin.
func cloneDependents(dependents map[any][]string) map[any][]string {
	if len(dependents) == 0 {
		return nil
	}
	out := make(map[any][]string, len(dependents))
	for trigger, names := range dependents {
		out[trigger] = append([]string{}, names...)
	}
	return out
}

func validateDependents(p Parameter, dependents map[any][]string) error {
	for trigger, names := range dependents {
		if !p.Validate(trigger) {
			return fmt.Errorf("searchspace: dependent trigger %v is not a valid value for parameter %q", trigger, p.Name())
		}
		if len(names) == 0 {
			return fmt.Errorf("searchspace: dependent trigger %v for parameter %q lists no parameters", trigger, p.Name())
		}
	}
	return nil
}
