package api

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobmon-io/jobmon/internal/identity"
	"github.com/jobmon-io/jobmon/internal/platform"
)

func TestResolverSource(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	t.Run("nil resolver yields no client", func(t *testing.T) {
		source := NewResolverSource(nil)

		_, ok := source.ClientFor("")
		assert.False(t, ok)
	})

	t.Run("unconfigured host yields no client", func(t *testing.T) {
		resolver := identity.NewResolver(&platform.Config{}, logger)
		source := NewResolverSource(resolver)

		_, ok := source.ClientFor("")
		assert.False(t, ok)

		// A forwarded token cannot conjure a client without a host either.
		_, ok = source.ClientFor("tok")
		assert.False(t, ok)
	})

	t.Run("configured host serves the service principal", func(t *testing.T) {
		resolver := identity.NewResolver(&platform.Config{Host: "https://example.cloud"}, logger)
		source := NewResolverSource(resolver)

		client, ok := source.ClientFor("")
		require.True(t, ok)
		assert.NotNil(t, client)
	})

	t.Run("forwarded token gets a delegated client", func(t *testing.T) {
		resolver := identity.NewResolver(&platform.Config{Host: "https://example.cloud"}, logger)
		source := NewResolverSource(resolver)

		delegated, ok := source.ClientFor("tok")
		require.True(t, ok)

		service, ok := source.ClientFor("")
		require.True(t, ok)

		// Delegated clients are built per request, never the shared service client.
		assert.NotSame(t, delegated, service)
	})
}
