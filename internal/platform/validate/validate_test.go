// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package validate_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Grace", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("username", "tai").
		MinLen("username", "tai", 3).
		MaxLen("username", "tai", 10).
		Email("email", "tai@example.org").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").       // Fails
		MinLen("username", "a", 5).     // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

/*
TestValidator_Number rejects values that are not finite numbers, since NaN
compares false against every bound.
*/
func TestValidator_Number(t *testing.T) {
	low, high := validate.Bound(1), validate.Bound(100)

	for _, value := range []string{"NaN", "nan", "Inf", "+Inf", "-Infinity", "1e400", "abc"} {
		v := &validate.Validator{}
		v.Number("limit", value, low, high)
		assert.True(t, v.HasErrors(), value)
	}

	v := &validate.Validator{}
	v.Number("limit", " 42 ", low, high)
	assert.False(t, v.HasErrors())

	_, errs := validate.Validate(map[string]string{"limit": "NaN"}, validate.Schema{"limit": {Min: low, Max: high}})
	assert.Len(t, errs, 1)
}

/*
TestValidator_Custom adds a failure only when the condition holds.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	v.Custom("new_password", false, "unused").
		Custom("new_password", true, "Must differ from the current password")

	require.Len(t, v.Errors(), 1)
	assert.Equal(t, "Must differ from the current password", v.Errors()[0].Message)
}

/*
TestValidator_Password reports one failure per missing composition class.
*/
func TestValidator_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		failures int
	}{
		{"complete", "Sunday#Service9", 0},
		{"no_special", "Sunday9Service", 1},
		{"digits_only", "12345678", 3},
		{"empty", "", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Password("password", tt.password)
			assert.Len(t, v.Errors(), tt.failures)
		})
	}
}

/*
TestValidate_Email covers the pass-through and rejection of an email field.
*/
func TestValidate_Email(t *testing.T) {
	schema := validate.Schema{
		"email": {Required: true, Format: validate.FormatEmail},
	}

	output, errs := validate.Validate(map[string]string{"email": "not-an-email"}, schema)
	assert.Nil(t, output)
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)

	output, errs = validate.Validate(map[string]string{"email": "a@b.com"}, schema)
	assert.Nil(t, errs)
	assert.Equal(t, map[string]string{"email": "a@b.com"}, output)
}

/*
TestValidate_CollectsEveryField checks that validation never stops at the first failure.
*/
func TestValidate_CollectsEveryField(t *testing.T) {
	schema := validate.Schema{
		"username": {Required: true, MinLen: 3, MaxLen: 20, Pattern: regexp.MustCompile(`^[a-z0-9_]+$`)},
		"role":     {Required: true, OneOf: []string{"admin", "pastor", "member"}},
		"age":      {Min: validate.Bound(0), Max: validate.Bound(130)},
		"password": {Required: true, MinLen: 8, Password: true, Message: "Password is too weak"},
	}

	data := map[string]string{
		"username": "A",
		"role":     "bishop",
		"age":      "200",
		"password": "short",
	}

	output, errs := validate.Validate(data, schema)
	assert.Nil(t, output)

	fields := map[string]int{}
	for _, failure := range errs {
		fields[failure.Field]++
	}

	assert.Equal(t, 2, fields["username"], "min length and pattern both reported")
	assert.Equal(t, 1, fields["role"])
	assert.Equal(t, 1, fields["age"])
	assert.Equal(t, 1, fields["password"], "custom message replaces individual failures")

	ae := apperr.As(errs.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Len(t, ae.Details, len(errs))
}

/*
TestValidate_OptionalAndUnknownFields checks absent optional fields and dropped extras.
*/
func TestValidate_OptionalAndUnknownFields(t *testing.T) {
	schema := validate.Schema{
		"name":  {Required: true},
		"notes": {MaxLen: 10},
	}

	output, errs := validate.Validate(map[string]string{"name": "Ruth", "admin": "true"}, schema)
	require.Nil(t, errs)
	assert.Equal(t, map[string]string{"name": "Ruth"}, output)

	_, errs = validate.Validate(map[string]string{}, schema)
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)
}

/*
TestValidate_FreeTextIsSanitized checks that handlers receive the sanitized value.
*/
func TestValidate_FreeTextIsSanitized(t *testing.T) {
	schema := validate.Schema{
		"note": {Required: true, FreeText: true, MaxLen: 200},
	}

	output, errs := validate.Validate(map[string]string{"note": "<b>hi</b>"}, schema)
	require.Nil(t, errs)
	assert.Equal(t, `\u003cb\u003ehi\u003c/b\u003e`, output["note"])

	_, errs = validate.Validate(map[string]string{"note": ";;--"}, schema)
	require.Len(t, errs, 1, "a value that sanitizes to nothing is missing")
}

/*
TestSanitize checks control stripping, SQL breakout removal and markup encoding.
*/
func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Hello world", "Hello world"},
		{"whitespace_kept", "line\tone\r\nline two", "line\tone\r\nline two"},
		{"controls_stripped", "a\x00b\x07c\x7fd", "abcd"},
		{"comment_markers", "x /* y */ z -- w", "x  y  z  w"},
		{"rejoined_marker", "-;-", ""},
		{"markup", `<a href="x">Tom & 'Jerry'</a>`, `\u003ca href=\u0022x\u0022\u003eTom \u0026 \u0027Jerry\u0027\u003c/a\u003e`},
		{"backslash", `C:\temp`, `C:\u005ctemp`},
		{"nfc", "Cafe\u0301", "Caf\u00e9"},
		{"injection", "'; DROP TABLE users; --", `\u0027 DROP TABLE users `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.Sanitize(tt.input))
		})
	}
}

/*
TestSanitize_NoStatementBreakout checks that a sanitized injection attempt
carries neither terminator nor comment marker.
*/
func TestSanitize_NoStatementBreakout(t *testing.T) {
	inputs := []string{
		"'; DROP TABLE users; --",
		"1;--",
		"a;;;b",
		"--;--;--",
		"x';/**/DELETE FROM users;--",
		"/-;-*",
	}

	for _, input := range inputs {
		out := validate.Sanitize(input)

		assert.NotContains(t, out, ";", input)
		assert.NotContains(t, out, "--", input)
		assert.NotContains(t, out, "/*", input)
		assert.NotContains(t, out, "*/", input)
	}
}
