package logging

import (
	"log/slog"
	"strings"
)

// Redacted replaces secret material in log output.
const Redacted = "[REDACTED]"

// secretKeys names log keys whose values never appear in clear text: bearer
// tokens, credentials and signing material.
var secretKeys = map[string]struct{}{
	"authorization": {},
	"token":         {},
	"secret":        {},
	"password":      {},
	"privatekey":    {},
}

// MaskValue blanks a non-empty secret. Empty strings pass through so absent
// fields stay visibly absent.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return Redacted
}

// MaskField builds a slog.Attr, blanking the value when the key names secret
// material. Non-secret keys pass through untouched.
func MaskField(key, value string) slog.Attr {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if _, secret := secretKeys[normalized]; secret {
		return slog.String(key, MaskValue(value))
	}
	return slog.String(key, value)
}
