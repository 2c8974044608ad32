package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService signs and verifies the two claim shapes the login protocol
// uses. Verification is atomic: signature and expiry are checked together,
// and an expired-but-well-signed token is reported differently from a
// malformed or tampered one.
type TokenService interface {
	IssuePreAuth(userID int64, email string) (string, error)
	VerifyPreAuth(raw string) (*PreAuthClaims, error)
	IssueSession(userID, workspaceID int64, extra map[string]any) (string, error)
	VerifySession(raw string) (*SessionClaims, error)
}

// TokenServiceImpl implements TokenService with HS256 and two independent
// signing secrets.
type TokenServiceImpl struct {
	sessionKey []byte
	preAuthKey []byte
	sessionTTL time.Duration
	preAuthTTL time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

// TokenOption customizes the token service.
type TokenOption func(*TokenServiceImpl)

// WithTokenClock injects a custom clock (useful for tests).
func WithTokenClock(clock func() time.Time) TokenOption {
	return func(ts *TokenServiceImpl) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenLogger overrides the logger.
func WithTokenLogger(logger Logger) TokenOption {
	return func(ts *TokenServiceImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a TokenService from the given configuration.
func NewTokenService(cfg *Config, opts ...TokenOption) *TokenServiceImpl {
	ts := &TokenServiceImpl{
		sessionKey: []byte(cfg.SessionSecret),
		preAuthKey: []byte(cfg.PreAuthSecret),
		sessionTTL: cfg.SessionTTL,
		preAuthTTL: cfg.PreAuthTTL,
		issuer:     cfg.Issuer,
		logger:     defLogger{},
		now:        time.Now,
	}

	if ts.sessionTTL <= 0 {
		ts.sessionTTL = time.Hour
	}

	if ts.preAuthTTL <= 0 {
		ts.preAuthTTL = 5 * time.Minute
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// IssuePreAuth signs a short-lived token proving the password was verified,
// pending workspace selection.
func (ts *TokenServiceImpl) IssuePreAuth(userID int64, email string) (string, error) {
	now := ts.now()
	claims := &PreAuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.preAuthTTL)),
		},
		UID:      userID,
		Email:    email,
		TokenUse: tokenUsePreAuth,
	}

	return ts.sign(claims, ts.preAuthKey)
}

// VerifyPreAuth parses and validates a pre-auth token.
func (ts *TokenServiceImpl) VerifyPreAuth(raw string) (*PreAuthClaims, error) {
	claims := &PreAuthClaims{}
	if err := ts.parse(raw, claims, ts.preAuthKey); err != nil {
		return nil, err
	}

	if claims.TokenUse != tokenUsePreAuth {
		ts.logger.Error("TokenService rejected token with wrong use claim", "use", claims.TokenUse)
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// IssueSession signs the credential used for all workspace-scoped requests.
// extra lets callers embed principal-identifying data (e.g. display name)
// without changing the codec's shape.
func (ts *TokenServiceImpl) IssueSession(userID, workspaceID int64, extra map[string]any) (string, error) {
	now := ts.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.sessionTTL)),
		},
		UID:         userID,
		WorkspaceID: workspaceID,
		TokenUse:    tokenUseSession,
		Extra:       extra,
	}

	return ts.sign(claims, ts.sessionKey)
}

// VerifySession parses and validates a session token.
func (ts *TokenServiceImpl) VerifySession(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := ts.parse(raw, claims, ts.sessionKey); err != nil {
		return nil, err
	}

	if claims.TokenUse != tokenUseSession {
		ts.logger.Error("TokenService rejected token with wrong use claim", "use", claims.TokenUse)
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (ts *TokenServiceImpl) sign(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

func (ts *TokenServiceImpl) parse(raw string, claims jwt.Claims, key []byte) error {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	parserOptions = append(parserOptions, jwt.WithTimeFunc(ts.now))

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, parserOptions...)

	if err != nil {
		// A tampered token that also happens to be expired is invalid,
		// not expired.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
				WithTextCode(ErrTokenInvalid.TextCode).
				WithCode(errors.CodeUnauthorized)
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
