package reconcile

import (
	"fmt"
	"strings"
)

// Resource kinds used in fully-qualified platform identifiers.
const (
	KindInventoryItem  = "InventoryItem"
	KindLocation       = "Location"
	KindProductVariant = "ProductVariant"
	KindOrder          = "Order"
)

const gidPrefix = "gid://shopify/"

// Canonical converts a platform identifier given as a numeric string or as a
// resource path into the resource path form (gid://shopify/<Kind>/<id>).
// Identifiers in neither encoding are opaque and kept verbatim.
func Canonical(kind, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty %s id", ErrMalformedInput, kind)
	}

	if strings.HasPrefix(raw, gidPrefix) {
		rest := strings.TrimPrefix(raw, gidPrefix)
		// Some payloads append query parameters to the path.
		if i := strings.IndexByte(rest, '?'); i >= 0 {
			rest = rest[:i]
		}
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] != kind || !isNumeric(parts[1]) {
			return "", fmt.Errorf("%w: %q is not a %s id", ErrMalformedInput, raw, kind)
		}
		return gidPrefix + kind + "/" + parts[1], nil
	}

	if !isNumeric(raw) {
		return raw, nil
	}
	return gidPrefix + kind + "/" + raw, nil
}

// NumericID returns the trailing numeric segment of an identifier in either form.
func NumericID(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// IDForms returns every encoding of a canonical identifier, canonical first.
// Store lookups match on all of them so older rows written with the numeric form
// are still found.
func IDForms(canonical string) []string {
	if !strings.HasPrefix(canonical, gidPrefix) {
		return []string{canonical}
	}
	numeric := NumericID(canonical)
	if numeric == canonical {
		return []string{canonical}
	}
	return []string{canonical, numeric}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
