// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package validate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
)

// Rule declares the constraints of a single field.
type Rule struct {
	Required bool

	// MinLen and MaxLen count Unicode characters. Zero disables the check.
	MinLen int
	MaxLen int

	Pattern *regexp.Regexp

	// Format is a validator tag such as [FormatEmail] or [FormatURL].
	Format string

	OneOf []string

	// Min and Max make the field numeric.
	Min *float64
	Max *float64

	// Password requires uppercase, lowercase, digit and special characters.
	Password bool

	// FreeText runs [Sanitize] before any other check, and the sanitized
	// value is what the handler receives.
	FreeText bool

	// Message replaces every failure message of this field.
	Message string
}

// Schema maps field names to their rules.
type Schema map[string]Rule

// Errors lists the field failures of a [Validate] call.
type Errors []apperr.FieldError

// Err converts the failures into a VALIDATION_ERROR, or nil when there are none.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", e...)
}

// Bound returns a pointer to value, for [Rule.Min] and [Rule.Max].
func Bound(value float64) *float64 {
	return &value
}

/*
Validate checks data against schema.

Description: Every field of the schema is checked and every failure is
collected. Fields absent from the schema are dropped. Absent optional
fields are skipped.

Returns:
  - map[string]string: The sanitized values, nil when anything failed
  - Errors: All failures, nil on success
*/
func Validate(data map[string]string, schema Schema) (map[string]string, Errors) {
	fields := make([]string, 0, len(schema))
	for field := range schema {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	output := make(map[string]string, len(schema))
	var failures Errors

	for _, field := range fields {
		rule := schema[field]
		value, present := data[field]

		if rule.FreeText {
			value = Sanitize(value)
		}

		v := &Validator{}
		if strings.TrimSpace(value) == "" {
			if rule.Required {
				v.Required(field, value)
			}
		} else {
			rule.check(v, field, value)
		}

		if v.HasErrors() {
			if rule.Message != "" {
				failures = append(failures, apperr.FieldError{Field: field, Message: rule.Message})
			} else {
				failures = append(failures, v.Errors()...)
			}
			continue
		}

		if present {
			output[field] = value
		}
	}

	if len(failures) > 0 {
		return nil, failures
	}
	return output, nil
}

func (rule Rule) check(v *Validator, field, value string) {
	if rule.MinLen > 0 {
		v.MinLen(field, value, rule.MinLen)
	}
	if rule.MaxLen > 0 {
		v.MaxLen(field, value, rule.MaxLen)
	}
	if rule.Pattern != nil {
		v.Pattern(field, value, rule.Pattern)
	}
	if rule.Format != "" {
		v.Format(field, value, rule.Format)
	}
	if len(rule.OneOf) > 0 {
		v.OneOf(field, value, rule.OneOf...)
	}
	if rule.Min != nil || rule.Max != nil {
		v.Number(field, value, rule.Min, rule.Max)
	}
	if rule.Password {
		v.Password(field, value)
	}
}
