// Package tokenstate tracks JWT validity state in an external
// key-value store. Tokens are fingerprinted with SHA-256 before
// anything touches the store, partitioned into a valid set and a
// blacklisted set per identifier, and optionally expired by TTL.
package tokenstate

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Category selects which partition a record is filed under.
type Category string

const (
	CategoryValid       Category = "valid"
	CategoryBlacklisted Category = "blacklisted"
)

// Default key prefixes for the two categories.
const (
	DefaultValidPrefix       = "valid-jwt"
	DefaultBlacklistedPrefix = "blacklisted-jwt"
)

// Field names of a persisted record.
const (
	FieldIdentifier  = "identifier"
	FieldFingerprint = "fingerprint"
	FieldContext     = "context"
)

const keyDelimiter = ":"

// Options configures a Store. Zero values fall back to the defaults.
type Options struct {
	ValidPrefix       string
	BlacklistedPrefix string
	Logger            zerolog.Logger
}

// Store records and validates token state against a KV backend. It
// holds no persistent state of its own; every operation is a handful
// of round trips to the backend. Safe for concurrent use as long as
// the KV implementation is.
type Store struct {
	kv                KV
	validPrefix       string
	blacklistedPrefix string
	log               zerolog.Logger
}

// New creates a Store over kv.
func New(kv KV, opts Options) *Store {
	if opts.ValidPrefix == "" {
		opts.ValidPrefix = DefaultValidPrefix
	}
	if opts.BlacklistedPrefix == "" {
		opts.BlacklistedPrefix = DefaultBlacklistedPrefix
	}
	return &Store{
		kv:                kv,
		validPrefix:       opts.ValidPrefix,
		blacklistedPrefix: opts.BlacklistedPrefix,
		log:               opts.Logger,
	}
}

// RecordValid files the token under the valid category for identifier,
// storing tokenContext alongside it. A ttlSeconds greater than zero
// sets the record's expiration; otherwise any existing expiration is
// left untouched. Re-recording the same token overwrites the fields.
func (s *Store) RecordValid(ctx context.Context, identifier, rawToken, tokenContext string, ttlSeconds int64) error {
	return s.record(ctx, CategoryValid, identifier, rawToken, tokenContext, ttlSeconds)
}

// RecordBlacklisted files the token under the blacklisted category.
// Same contract as RecordValid.
func (s *Store) RecordBlacklisted(ctx context.Context, identifier, rawToken, tokenContext string, ttlSeconds int64) error {
	return s.record(ctx, CategoryBlacklisted, identifier, rawToken, tokenContext, ttlSeconds)
}

func (s *Store) record(ctx context.Context, category Category, identifier, rawToken, tokenContext string, ttlSeconds int64) error {
	fingerprint := Fingerprint(rawToken)
	key, err := s.composeKey(category, identifier, fingerprint)
	if err != nil {
		return err
	}

	fields := map[string]string{
		FieldIdentifier:  identifier,
		FieldFingerprint: fingerprint,
		FieldContext:     tokenContext,
	}
	if err := s.kv.WriteFields(ctx, key, fields); err != nil {
		return err
	}
	if ttlSeconds > 0 {
		if err := s.kv.SetExpiration(ctx, key, time.Duration(ttlSeconds)*time.Second); err != nil {
			return err
		}
	}

	s.log.Debug().
		Str("category", string(category)).
		Str("identifier", identifier).
		Int64("ttl_seconds", ttlSeconds).
		Msg("token recorded")
	return nil
}

// Validate checks the token's state for identifier. The blacklisted
// category is checked first and always wins: a token recorded both
// valid and blacklisted fails with ErrTokenBlacklisted. A token with
// no valid record fails with ErrTokenNotFound. On success no record
// data is returned.
//
// The two existence checks are independent round trips, not an atomic
// pair; a concurrent write or delete between them can produce a stale
// verdict. That race is accepted, matching the backend's per-key
// last-write-wins semantics.
func (s *Store) Validate(ctx context.Context, identifier, rawToken string) error {
	if err := checkIdentifier(identifier); err != nil {
		return err
	}
	fingerprint := Fingerprint(rawToken)

	blacklistedKey := composeKey(s.blacklistedPrefix, identifier, fingerprint)
	blacklisted, err := s.kv.Exists(ctx, blacklistedKey)
	if err != nil {
		return err
	}
	if blacklisted {
		return ErrTokenBlacklisted
	}

	validKey := composeKey(s.validPrefix, identifier, fingerprint)
	valid, err := s.kv.Exists(ctx, validKey)
	if err != nil {
		return err
	}
	if !valid {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteRecord removes the token's record under the given category.
// Deleting a record that does not exist is a no-op, not an error.
func (s *Store) DeleteRecord(ctx context.Context, category Category, identifier, rawToken string) error {
	key, err := s.composeKey(category, identifier, Fingerprint(rawToken))
	if err != nil {
		return err
	}
	return s.kv.Delete(ctx, key)
}

// DeleteAllByIdentifier removes every record under the given category
// for identifier. Matching keys are enumerated with a cursor-based
// scan and removed with a single bulk delete; zero matches is a no-op.
// Enumeration and deletion are not atomic as a pair: keys created in
// between survive, keys expired in between are harmless no-ops.
func (s *Store) DeleteAllByIdentifier(ctx context.Context, category Category, identifier string) error {
	if err := checkIdentifier(identifier); err != nil {
		return err
	}
	prefix, err := s.prefixFor(category)
	if err != nil {
		return err
	}

	pattern := prefix + keyDelimiter + identifier + keyDelimiter + "*"
	keys, err := s.kv.ScanKeys(ctx, pattern)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		return err
	}

	s.log.Debug().
		Str("category", string(category)).
		Str("identifier", identifier).
		Int("keys", len(keys)).
		Msg("records purged")
	return nil
}

func (s *Store) composeKey(category Category, identifier, fingerprint string) (string, error) {
	if err := checkIdentifier(identifier); err != nil {
		return "", err
	}
	prefix, err := s.prefixFor(category)
	if err != nil {
		return "", err
	}
	return composeKey(prefix, identifier, fingerprint), nil
}

func (s *Store) prefixFor(category Category) (string, error) {
	switch category {
	case CategoryValid:
		return s.validPrefix, nil
	case CategoryBlacklisted:
		return s.blacklistedPrefix, nil
	default:
		return "", ErrUnknownCategory
	}
}

// composeKey joins the key parts with the fixed delimiter:
// "<prefix>:<identifier>:<fingerprint>".
func composeKey(prefix, identifier, fingerprint string) string {
	return prefix + keyDelimiter + identifier + keyDelimiter + fingerprint
}

// checkIdentifier rejects identifiers that would break the key layout.
// Fingerprints are lowercase hex and can never contain the delimiter.
func checkIdentifier(identifier string) error {
	if identifier == "" || strings.Contains(identifier, keyDelimiter) {
		return ErrIdentifierInvalid
	}
	return nil
}
