// Package shared provides common utility functions used across multiple
// packages in the mdmctl codebase.
package shared

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxErrorBody caps how much of a response body ends up in an error.
const maxErrorBody = 512

// HTTPStatusError creates a formatted error for non-2xx HTTP responses,
// including a trimmed excerpt of the response body when there is one.
func HTTPStatusError(status int, url string, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("status=%d url=%s", status, url)
	}
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}
