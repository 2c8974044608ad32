package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/stretchr/testify/assert"
)

func TestParseCredential(t *testing.T) {
	t.Run("plain bearer token", func(t *testing.T) {
		cred := auth.ParseCredential("eyJhbGciOi.some.token", true)
		assert.Equal(t, auth.BearerCredential{Token: "eyJhbGciOi.some.token"}, cred)
	})

	t.Run("debug shape with bypass enabled", func(t *testing.T) {
		cred := auth.ParseCredential("debug:42:7:hunter2", true)
		assert.Equal(t, auth.DebugCredential{
			UserID:      42,
			WorkspaceID: 7,
			Secret:      "hunter2",
		}, cred)
	})

	t.Run("debug shape with bypass disabled stays a bearer token", func(t *testing.T) {
		cred := auth.ParseCredential("debug:42:7:hunter2", false)
		assert.Equal(t, auth.BearerCredential{Token: "debug:42:7:hunter2"}, cred)
	})

	t.Run("wrong segment count", func(t *testing.T) {
		cred := auth.ParseCredential("debug:42:7", true)
		assert.IsType(t, auth.BearerCredential{}, cred)

		cred = auth.ParseCredential("debug:42:7:secret:extra", true)
		assert.IsType(t, auth.BearerCredential{}, cred)
	})

	t.Run("non numeric ids", func(t *testing.T) {
		cred := auth.ParseCredential("debug:forty:7:secret", true)
		assert.IsType(t, auth.BearerCredential{}, cred)

		cred = auth.ParseCredential("debug:42:seven:secret", true)
		assert.IsType(t, auth.BearerCredential{}, cred)
	})
}

func TestDebugCredential_Normalize(t *testing.T) {
	cred := auth.DebugCredential{UserID: 1, WorkspaceID: 2, Secret: "hunter2"}

	normalized := cred.Normalize()

	assert.Empty(t, normalized.Secret)
	assert.Equal(t, int64(1), normalized.UserID)
	assert.Equal(t, int64(2), normalized.WorkspaceID)
	assert.Equal(t, "hunter2", cred.Secret, "normalization copies, it does not mutate")
}
