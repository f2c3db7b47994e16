// Package api provides the HTTP API server for the jobmon service.
package api

import (
	"fmt"
	"net/url"
	"strconv"
)

// parseBoundedInt reads an integer query parameter, applying the default when
// absent and rejecting values outside [minValue, maxValue]. The error text is
// caller-facing and goes into a 400 problem detail verbatim.
func parseBoundedInt(query url.Values, name string, defaultValue, minValue, maxValue int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}

	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("%s must be between %d and %d, got %d", name, minValue, maxValue, value)
	}

	return value, nil
}
