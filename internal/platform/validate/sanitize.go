// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package validate

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// sqlBreakout removes comment markers and statement terminators.
var sqlBreakout = strings.NewReplacer("--", "", "/*", "", "*/", "", ";", "")

// markup encodes markup-significant characters as \u escapes, the same form
// encoding/json uses for HTML-safe output. The backslash is encoded too so an
// escape in the input cannot pass for one added here.
var markup = strings.NewReplacer(
	`\`, `\u005c`,
	"&", `\u0026`,
	"<", `\u003c`,
	">", `\u003e`,
	`"`, `\u0022`,
	"'", `\u0027`,
)

/*
Sanitize cleans a free-text value.

Description: The value is NFC-normalized, control characters other than
tab, CR and LF are removed, SQL comment markers and statement terminators
are stripped until none remain, and finally \ & < > " ' are encoded as
\u00XX escapes. The result never contains a statement terminator or a
comment marker.

This is a second line of defense. Storage code still binds every value as a
query parameter.

Example:

	validate.Sanitize(`'; DROP TABLE users; --`) // `\u0027 DROP TABLE users `
*/
func Sanitize(value string) string {
	value = norm.NFC.String(value)

	value = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)

	// Removing one marker can join two halves of another ("-;-").
	for {
		stripped := sqlBreakout.Replace(value)
		if stripped == value {
			break
		}
		value = stripped
	}

	return markup.Replace(value)
}
