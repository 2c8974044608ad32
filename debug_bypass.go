package auth

import (
	"context"
	"crypto/subtle"

	"github.com/goliatone/go-errors"
)

// DebugBypass authenticates as an arbitrary (user, workspace) pair given a
// shared secret, bypassing password checks but never membership checks. It
// is active only when the environment carries a secret; this is a
// deliberate trade-off for local and integration testing and must never be
// enabled with a real secret in a shared environment.
type DebugBypass struct {
	secret     []byte
	users      Users
	workspaces Workspaces
	logger     Logger
}

// DebugBypassOption customizes the resolver.
type DebugBypassOption func(*DebugBypass)

// WithDebugBypassLogger overrides the logger.
func WithDebugBypassLogger(logger Logger) DebugBypassOption {
	return func(b *DebugBypass) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewDebugBypass creates the resolver. An empty secret in cfg disables it
// entirely: debug-shaped bearer values then verify as ordinary session
// tokens.
func NewDebugBypass(cfg *Config, users Users, workspaces Workspaces, opts ...DebugBypassOption) *DebugBypass {
	b := &DebugBypass{
		users:      users,
		workspaces: workspaces,
		logger:     defLogger{},
	}

	if cfg.DebugBypassEnabled() {
		b.secret = []byte(cfg.DebugSecret)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// Enabled reports whether a shared secret is configured.
func (b *DebugBypass) Enabled() bool {
	return len(b.secret) > 0
}

// Resolve authenticates a parsed debug credential. A secret mismatch is
// reported as a plain invalid token so responses never reveal the bypass
// exists; missing principal, workspace, and membership each carry their own
// reason for precise assertions.
func (b *DebugBypass) Resolve(ctx context.Context, cred DebugCredential) (*Actor, error) {
	if !b.Enabled() {
		return nil, ErrTokenInvalid
	}

	if subtle.ConstantTimeCompare(b.secret, []byte(cred.Secret)) != 1 {
		b.logger.Warn("debug bypass secret mismatch", "user_id", cred.UserID, "workspace_id", cred.WorkspaceID)
		return nil, ErrTokenInvalid
	}

	// The secret is checked; do not carry it any further.
	cred = cred.Normalize()

	user, err := b.users.GetByID(ctx, cred.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, err
	}

	workspace, err := b.workspaces.GetByID(ctx, cred.WorkspaceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}

	ok, err := b.workspaces.IsMember(ctx, user.ID, workspace.ID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrMembershipRequired
	}

	b.logger.Info("debug bypass authenticated", "user_id", user.ID, "workspace_id", workspace.ID)

	return &Actor{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}
