package tokenstate

import "errors"

var (
	// ErrTokenBlacklisted is returned by Validate when the token has a
	// record under the blacklisted category. It takes precedence over
	// any valid record for the same token.
	ErrTokenBlacklisted = errors.New("token blacklisted")

	// ErrTokenNotFound is returned by Validate when the token has no
	// record under the valid category (and none under blacklisted).
	ErrTokenNotFound = errors.New("token not found")

	// ErrIdentifierInvalid is returned when an identifier is empty or
	// contains the key delimiter. No store call is made in that case.
	ErrIdentifierInvalid = errors.New("identifier is empty or contains the key delimiter")

	// ErrUnknownCategory is returned for a Category other than
	// CategoryValid or CategoryBlacklisted.
	ErrUnknownCategory = errors.New("unknown category")
)
