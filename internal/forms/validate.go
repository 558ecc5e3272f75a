package forms

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mandir/pkg/types"
)

const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeInvalidEnum = "invalid_enum"

	dateLayout = "2006-01-02"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks raw input against the descriptor's field schema and returns
// the normalized value map, or the full list of field issues in declaration
// order. Every violated field is reported in one pass. Fields not named by the
// schema are ignored. Validate never mutates raw.
func Validate(desc *Descriptor, raw map[string]any) (map[string]any, []types.FieldIssue) {
	values := make(map[string]any, len(desc.Fields))
	var issues []types.FieldIssue

	for _, f := range desc.Fields {
		rv, present := raw[f.Name]
		s, isString := rv.(string)
		if isString {
			s = strings.TrimSpace(s)
		}

		if !present || rv == nil || (isString && s == "") {
			if f.Required {
				issues = append(issues, types.FieldIssue{
					Field:   f.Name,
					Code:    CodeRequired,
					Message: fmt.Sprintf("%s is required", f.Label),
				})
			}
			continue
		}

		normalized, issue := coerce(f, rv, s, isString)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}

		values[f.Name] = normalized
	}

	if len(issues) > 0 {
		return nil, issues
	}

	return values, nil
}

func coerce(f Field, rv any, s string, isString bool) (any, *types.FieldIssue) {
	switch f.Kind {
	case KindString, KindText:
		if !isString {
			return nil, typeIssue(f, "must be a string")
		}
		return s, nil

	case KindEmail:
		if !isString || !emailPattern.MatchString(s) {
			return nil, typeIssue(f, "must be a valid email address")
		}
		return strings.ToLower(s), nil

	case KindDate:
		if !isString {
			return nil, typeIssue(f, "must be a date in YYYY-MM-DD format")
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, typeIssue(f, "must be a date in YYYY-MM-DD format")
		}
		return t.Format(dateLayout), nil

	case KindNumber:
		var n float64
		switch {
		case isString:
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, typeIssue(f, "must be a number")
			}
			n = parsed
		default:
			f64, ok := rv.(float64)
			if !ok {
				return nil, typeIssue(f, "must be a number")
			}
			n = f64
		}
		if n == math.Trunc(n) {
			return int64(n), nil
		}
		return n, nil

	case KindEnum:
		if !isString {
			return nil, enumIssue(f)
		}
		for _, allowed := range f.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, enumIssue(f)
	}

	return nil, typeIssue(f, "unsupported field kind")
}

func typeIssue(f Field, msg string) *types.FieldIssue {
	return &types.FieldIssue{
		Field:   f.Name,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("%s %s", f.Label, msg),
	}
}

func enumIssue(f Field) *types.FieldIssue {
	return &types.FieldIssue{
		Field:   f.Name,
		Code:    CodeInvalidEnum,
		Message: fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Enum, ", ")),
	}
}
