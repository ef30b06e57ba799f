// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"regexp"
	"strings"
)

var markupTag = regexp.MustCompile(`<[^>]*>`)

// CleanText removes HTML-like tags from text, collapses whitespace runs into a
// single space and trims the result. Applying it to clean text is a no-op.
func CleanText(text string) string {
	stripped := markupTag.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(stripped), " ")
}
