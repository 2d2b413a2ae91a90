// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

// Package validate checks and cleans untrusted input.
//
// Two styles are offered. [Validator] is a fluent, chainable collector used
// by services for ad-hoc checks. [Schema] declares per-field [Rule] values
// and drives [Validate], which the middleware composer runs before a
// handler sees a request.
//
// Both collect every failure before reporting; neither stops at the first.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
)

// Format tags understood by [Validator.Format] and [Rule.Format].
const (
	FormatEmail   = "email"
	FormatURL     = "url"
	FormatNumeric = "numeric"
)

// formats backs the Format rules. It is safe for concurrent use.
var formats = validator.New()

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid email address.
func (v *Validator) Email(field, value string) *Validator {
	return v.Format(field, value, FormatEmail)
}

// Format fails if the value does not satisfy the given validator tag
// (see [FormatEmail], [FormatURL], [FormatNumeric]).
func (v *Validator) Format(field, value, tag string) *Validator {
	if err := formats.Var(value, tag); err != nil {
		v.add(field, formatMessage(tag))
	}
	return v
}

// Pattern fails if the value does not match pattern.
func (v *Validator) Pattern(field, value string, pattern *regexp.Regexp) *Validator {
	if !pattern.MatchString(value) {
		v.add(field, "Invalid format")
	}
	return v
}

// Number fails if the value is not numeric or falls outside the optional bounds.
func (v *Validator) Number(field, value string, min, max *float64) *Validator {
	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		v.add(field, "Must be a number")
		return v
	}
	if min != nil && number < *min {
		v.add(field, "Must be at least "+strconv.FormatFloat(*min, 'f', -1, 64))
	}
	if max != nil && number > *max {
		v.add(field, "Must be at most "+strconv.FormatFloat(*max, 'f', -1, 64))
	}
	return v
}

// Password fails for every composition class the value is missing:
// uppercase, lowercase, digit and special character.
func (v *Validator) Password(field, value string) *Validator {
	var upper, lower, digit, special bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	if !upper {
		v.add(field, "Must contain an uppercase letter")
	}
	if !lower {
		v.add(field, "Must contain a lowercase letter")
	}
	if !digit {
		v.add(field, "Must contain a digit")
	}
	if !special {
		v.add(field, "Must contain a special character")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("new_password", next == current, "Must differ from the current password")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Errors returns the collected field errors.
func (v *Validator) Errors() []apperr.FieldError {
	return v.errs
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}

func formatMessage(tag string) string {
	switch tag {
	case FormatEmail:
		return "Must be a valid email address"
	case FormatURL:
		return "Must be a valid URL"
	case FormatNumeric:
		return "Must be numeric"
	default:
		return "Invalid format"
	}
}
