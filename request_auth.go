package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-tenant-auth/middleware/authware"
)

// RequestAuthenticator resolves a raw bearer value into an Actor. Session
// tokens are re-validated against live state: a token issued an hour ago
// must not outlive the principal's deletion or an intervening membership
// revocation.
type RequestAuthenticator struct {
	tokens     TokenService
	users      Users
	workspaces Workspaces
	bypass     *DebugBypass
	cookieName string
	logger     Logger
}

var _ authware.Verifier = (*RequestAuthenticator)(nil)

// RequestAuthOption customizes the authenticator.
type RequestAuthOption func(*RequestAuthenticator)

// WithRequestAuthLogger overrides the logger.
func WithRequestAuthLogger(logger Logger) RequestAuthOption {
	return func(ra *RequestAuthenticator) {
		if logger != nil {
			ra.logger = logger
		}
	}
}

// NewRequestAuthenticator wires the verifier used by the authware
// middleware.
func NewRequestAuthenticator(cfg *Config, tokens TokenService, users Users, workspaces Workspaces, bypass *DebugBypass, opts ...RequestAuthOption) *RequestAuthenticator {
	ra := &RequestAuthenticator{
		tokens:     tokens,
		users:      users,
		workspaces: workspaces,
		bypass:     bypass,
		cookieName: cfg.CookieName,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ra)
		}
	}

	return ra
}

// VerifyCredential classifies the raw value once, dispatches debug
// credentials to the bypass, and verifies everything else as a session
// token followed by the live principal and membership recheck.
func (ra *RequestAuthenticator) VerifyCredential(ctx context.Context, raw string) (*authware.Actor, error) {
	cred := ParseCredential(raw, ra.bypass != nil && ra.bypass.Enabled())

	switch c := cred.(type) {
	case DebugCredential:
		return ra.bypass.Resolve(ctx, c)
	case BearerCredential:
		return ra.verifySession(ctx, c.Token)
	default:
		return nil, ErrTokenInvalid
	}
}

// Middleware builds the request middleware for the given auth mode,
// propagating the actor to the standard context.
func (ra *RequestAuthenticator) Middleware(mode authware.Mode) router.MiddlewareFunc {
	return authware.New(authware.Config{
		Verifier:   ra,
		Mode:       mode,
		CookieName: ra.cookieName,
		ContextEnricher: func(c context.Context, actor *authware.Actor) context.Context {
			return WithActor(c, actor)
		},
	})
}

func (ra *RequestAuthenticator) verifySession(ctx context.Context, token string) (*Actor, error) {
	claims, err := ra.tokens.VerifySession(token)
	if err != nil {
		return nil, err
	}

	user, err := ra.users.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.IsNotFound(err) {
			ra.logger.Warn("session principal no longer exists", "user_id", claims.UID)
			return nil, ErrPrincipalNotFound
		}
		return nil, err
	}

	ok, err := ra.workspaces.IsMember(ctx, user.ID, claims.WorkspaceID)
	if err != nil {
		return nil, err
	}

	if !ok {
		ra.logger.Warn("session membership revoked", "user_id", user.ID, "workspace_id", claims.WorkspaceID)
		return nil, ErrMembershipRevoked
	}

	return &Actor{
		UserID:      user.ID,
		WorkspaceID: claims.WorkspaceID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}
