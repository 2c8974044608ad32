package auth

import (
	"strconv"
	"strings"
)

const debugPrefix = "debug:"

// Credential is the tagged variant a raw bearer value parses into. It is
// parsed exactly once at the request boundary; nothing downstream re-parses
// the wire string.
type Credential interface {
	credential()
}

// BearerCredential carries an opaque token destined for the session codec.
type BearerCredential struct {
	Token string
}

// DebugCredential carries an explicit (user, workspace) pair plus the shared
// secret. The secret is dropped during normalization once checked; see
// DebugCredential.Normalize.
type DebugCredential struct {
	UserID      int64
	WorkspaceID int64
	Secret      string
}

func (BearerCredential) credential() {}
func (DebugCredential) credential()  {}

// Normalize strips the shared secret so it is never passed further down the
// call chain.
func (d DebugCredential) Normalize() DebugCredential {
	d.Secret = ""
	return d
}

// ParseCredential classifies a raw bearer value. Debug-shaped values are
// recognized only while the bypass is enabled; otherwise they flow through
// as ordinary (and therefore invalid) bearer tokens, so responses never
// reveal that the bypass exists.
func ParseCredential(raw string, debugEnabled bool) Credential {
	if !debugEnabled || !strings.HasPrefix(raw, debugPrefix) {
		return BearerCredential{Token: raw}
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return BearerCredential{Token: raw}
	}

	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return BearerCredential{Token: raw}
	}

	workspaceID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return BearerCredential{Token: raw}
	}

	return DebugCredential{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Secret:      parts[3],
	}
}
