package aliasing

import (
	"strings"
)

// Resolver maps raw SKU names to display names. Immutable after construction
// and safe for concurrent use. A nil or empty resolver is a passthrough.
type Resolver struct {
	aliases map[string]string
}

// NewResolver creates a resolver from config. Entries with an empty raw name
// or empty display name are dropped.
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil || len(cfg.SkuAliases) == 0 {
		return &Resolver{aliases: map[string]string{}}
	}

	aliases := make(map[string]string, len(cfg.SkuAliases))

	for raw, display := range cfg.SkuAliases {
		raw = strings.TrimSpace(raw)
		display = strings.TrimSpace(display)

		if raw == "" || display == "" {
			continue
		}

		aliases[raw] = display
	}

	return &Resolver{aliases: aliases}
}

// Resolve returns the display name for a raw SKU name, or the raw name
// unchanged when no alias is configured.
func (r *Resolver) Resolve(sku string) string {
	if r == nil || len(r.aliases) == 0 {
		return sku
	}

	if display, ok := r.aliases[sku]; ok {
		return display
	}

	return sku
}

// Count returns the number of configured aliases.
func (r *Resolver) Count() int {
	if r == nil {
		return 0
	}

	return len(r.aliases)
}
