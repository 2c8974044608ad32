// Package authware is the per-request authentication middleware: it
// extracts a bearer credential from the Authorization header or a named
// cookie, hands it to a Verifier, and binds the resulting actor to the
// request. Verification lives behind a small interface to avoid import
// cycles with the auth package, mirroring how the credential itself is
// treated: parsed once at the boundary, passed as a value afterwards.
package authware

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

// ErrMissingCredential is returned when neither the header nor the cookie
// carries a bearer value.
var ErrMissingCredential = errors.New("missing credential")

// Actor is the authenticated principal/workspace pair a verified credential
// resolves to.
type Actor struct {
	UserID      int64
	WorkspaceID int64
	Email       string
	DisplayName string
}

// Verifier turns a raw bearer value into an Actor or a typed failure.
// This mirrors RequestAuthenticator.VerifyCredential from the auth package.
type Verifier interface {
	VerifyCredential(ctx context.Context, raw string) (*Actor, error)
}

// Mode controls whether an absent or failing credential is fatal.
type Mode string

const (
	// ModeRequired rejects requests without a valid credential.
	ModeRequired Mode = "required"
	// ModeOptional proceeds without an actor when no valid credential is
	// present.
	ModeOptional Mode = "optional"
	// ModeNone skips authentication entirely.
	ModeNone Mode = "none"
)

type Config struct {
	// Verifier is required.
	Verifier Verifier

	Mode           Mode
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler

	HeaderName string
	AuthScheme string
	CookieName string
	ContextKey string

	// ContextEnricher propagates the actor to the standard Go context so
	// downstream code reads a typed value instead of a shared locals map.
	ContextEnricher func(c context.Context, actor *Actor) context.Context
}

// New builds the request-authentication middleware.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			if cfg.Mode == ModeNone {
				return ctx.Next()
			}

			raw, err := ExtractRawCredential(ctx, cfg.getExtractors())
			if err != nil {
				if cfg.Mode == ModeOptional {
					return ctx.Next()
				}
				return cfg.ErrorHandler(ctx, err)
			}

			actor, err := cfg.Verifier.VerifyCredential(ctx.Context(), raw)
			if err != nil {
				if cfg.Mode == ModeOptional {
					return ctx.Next()
				}
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, actor)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), actor))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// ExtractRawCredential runs the extractors in priority order and returns the
// first bearer value found.
func ExtractRawCredential(ctx router.Context, extractors []CredentialExtractor) (string, error) {
	for _, extractor := range extractors {
		if raw, err := extractor(ctx); raw != "" && err == nil {
			return raw, nil
		}
	}

	return "", ErrMissingCredential
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Verifier == nil {
		panic("AUTH: authware middleware configuration: Verifier is required.")
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeRequired
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			if errors.Is(err, ErrMissingCredential) {
				return c.Status(router.StatusUnauthorized).SendString(ErrMissingCredential.Error())
			}
			return c.Status(router.StatusUnauthorized).SendString("Invalid or expired credential")
		}
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = router.HeaderAuthorization
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "wsession"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "actor"
	}

	return cfg
}

// CredentialExtractor pulls a raw bearer value out of the request.
type CredentialExtractor func(c router.Context) (string, error)

func (cfg *Config) getExtractors() []CredentialExtractor {
	return []CredentialExtractor{
		fromHeader(cfg.HeaderName, cfg.AuthScheme),
		fromCookie(cfg.CookieName),
	}
}

// fromHeader returns a function that extracts the credential from the
// request header.
func fromHeader(header string, authScheme string) CredentialExtractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrMissingCredential
	}
}

// fromCookie returns a function that extracts the credential from the named
// cookie.
func fromCookie(name string) CredentialExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrMissingCredential
		}
		return token, nil
	}
}
