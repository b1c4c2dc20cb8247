package util

import "strings"

// MaskSecret keeps the first visiblePrefix bytes of s and masks the rest.
// Strings no longer than visiblePrefix are fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

var sensitiveHeaderParts = []string{"auth", "cookie", "token", "secret", "key", "password"}

// IsSensitiveHeader reports whether a header name looks like it carries
// credentials.
func IsSensitiveHeader(name string) bool {
	name = strings.ToLower(name)
	for _, part := range sensitiveHeaderParts {
		if strings.Contains(name, part) {
			return true
		}
	}
	return false
}

// RedactHeaders returns a copy of headers safe to log: values of sensitive
// headers keep only a short prefix.
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		if IsSensitiveHeader(name) {
			// Keep the scheme of "Bearer x" / "Basic x" visible.
			scheme, _, found := strings.Cut(value, " ")
			if found {
				value = scheme + " " + MaskSecret(value[len(scheme)+1:], 0)
			} else {
				value = MaskSecret(value, 0)
			}
		}
		out[name] = value
	}
	return out
}
