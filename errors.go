package auth

import (
	"github.com/goliatone/go-errors"
)

// Sentinel errors for every recoverable failure the package can produce.
// Wrong email and wrong password share ErrInvalidCredentials so responses
// cannot be used for account enumeration.
var (
	ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(errors.CodeUnauthorized)

	ErrNoWorkspaceAccess = errors.New("user does not belong to any workspace", errors.CategoryAuth).
				WithTextCode("NO_WORKSPACE_ACCESS").
				WithCode(errors.CodeUnauthorized)

	ErrWorkspaceNotFound = errors.New("workspace not found", errors.CategoryNotFound).
				WithTextCode("WORKSPACE_NOT_FOUND").
				WithCode(errors.CodeNotFound)

	ErrMembershipRequired = errors.New("user is not a member of this workspace", errors.CategoryAuthz).
				WithTextCode("MEMBERSHIP_REQUIRED").
				WithCode(errors.CodeForbidden)

	ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	ErrTokenInvalid = errors.New("token is invalid", errors.CategoryAuth).
			WithTextCode("TOKEN_INVALID").
			WithCode(errors.CodeUnauthorized)

	ErrPrincipalNotFound = errors.New("user no longer exists", errors.CategoryAuth).
				WithTextCode("PRINCIPAL_NOT_FOUND").
				WithCode(errors.CodeUnauthorized)

	ErrMembershipRevoked = errors.New("workspace membership has been revoked", errors.CategoryAuthz).
				WithTextCode("MEMBERSHIP_REVOKED").
				WithCode(errors.CodeForbidden)

	ErrSlugInvalid = errors.New("workspace slug must be lowercase letters, digits, or hyphens", errors.CategoryValidation).
			WithTextCode("SLUG_INVALID").
			WithCode(errors.CodeBadRequest)

	ErrSlugTaken = errors.New("workspace slug is already registered", errors.CategoryConflict).
			WithTextCode("SLUG_TAKEN").
			WithCode(errors.CodeConflict)

	ErrEmailTaken = errors.New("email is already registered", errors.CategoryConflict).
			WithTextCode("EMAIL_TAKEN").
			WithCode(errors.CodeConflict)

	ErrPasswordTooShort = errors.New("password must be at least 8 characters", errors.CategoryValidation).
				WithTextCode("PASSWORD_TOO_SHORT").
				WithCode(errors.CodeBadRequest)

	ErrCredentialMissing = errors.New("no credential present", errors.CategoryAuth).
				WithTextCode("CREDENTIAL_MISSING").
				WithCode(errors.CodeUnauthorized)
)

// HasTextCode reports whether err carries the given machine-readable code.
func HasTextCode(err error, code string) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// IsTokenExpired reports whether err is the expired-token failure.
func IsTokenExpired(err error) bool {
	return HasTextCode(err, "TOKEN_EXPIRED")
}

// IsTokenInvalid reports whether err is the malformed/bad-signature failure.
func IsTokenInvalid(err error) bool {
	return HasTextCode(err, "TOKEN_INVALID")
}

// IsStorageFailure reports whether err is a fatal storage error rather than
// one of the typed authentication outcomes.
func IsStorageFailure(err error) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryInternal
	}
	return false
}

func storageError(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg)
}
